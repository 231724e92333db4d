package cmd

import (
	"strings"
	"testing"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/detect"
	"github.com/aqlanhadi/mt940kit/extractor/fields"
	"github.com/aqlanhadi/mt940kit/integrations/filestore"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_CatalogueIsClean(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(defaultConfigYAML)))

	catalog, err := filestore.LoadCatalog(v, "banks")
	require.NoError(t, err)
	banks, mappings := catalog.All()
	require.Len(t, banks, 1)
	assert.Equal(t, "VCB", banks[0].BankCode)

	assert.Empty(t, fields.Lint(banks, mappings))
	assert.Empty(t, detect.Conflicts(banks))

	for _, m := range mappings {
		_, err := common.ParseField(m.IdentifyInfo)
		assert.NoError(t, err, m.IdentifyInfo)
	}
}
