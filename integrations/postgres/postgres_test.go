package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullHelpers(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("x"))
	assert.Equal(t, "x", deref(nullIfEmpty("x")))
	assert.Equal(t, "", deref(nil))
}

func TestEncodeDetails(t *testing.T) {
	data, err := encodeDetails(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	data, err = encodeDetails([]common.Transaction{{TransactionDate: "01112023", Narrative: "Salary", ReferenceNumber: "FT1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"transactiondate":"01112023","narrative":"Salary","reference_number":"FT1"}]`, string(data))
}

// TestRoundTrip runs against a real database when TEST_DATABASE_URL is set.
func TestRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Connect(ctx, url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureSchema(ctx))

	companyID := time.Now().UnixNano()
	banks := []common.BankIdentityConfig{{
		CompanyID:  companyID,
		BankCode:   "vcb",
		Keywords:   []string{"vietcombank"},
		ScanRanges: []common.ScanRange{{Name: "title", Range: "A1:D1"}},
		IsActive:   true,
	}}
	mappings := []common.FieldMappingConfig{
		{CompanyID: companyID, BankCode: "VCB", IdentifyInfo: "currency", Keywords: []string{"currency"}, ColKeyword: "A", ColValue: "A"},
		{CompanyID: companyID, BankCode: "VCB", IdentifyInfo: "transactiondate", ColValue: "A", RowStart: 7, CellFormat: "%d/%m/%Y"},
	}
	res, err := db.ImportCatalog(ctx, banks, mappings, ImportOptions{Replace: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)

	gotBanks, err := db.BankConfigs(ctx, companyID)
	require.NoError(t, err)
	var found bool
	for _, b := range gotBanks {
		if b.CompanyID == companyID {
			found = true
			assert.Equal(t, "VCB", b.BankCode)
			assert.Equal(t, banks[0].ScanRanges, b.ScanRanges)
		}
	}
	assert.True(t, found)

	gotMappings, err := db.FieldMappings(ctx, companyID, "vcb")
	require.NoError(t, err)
	require.Len(t, gotMappings, 2)
	assert.Equal(t, "transactiondate", gotMappings[1].IdentifyInfo)

	stmt := common.Statement{
		CompanyID:   companyID,
		BankCode:    "VCB",
		Filename:    "uploads/x.xlsx",
		Status:      common.StatusSuccess,
		Details:     []common.Transaction{{TransactionDate: "01112023", Narrative: "Salary", Credit: "5"}},
		ProcessedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, db.CreateStatement(ctx, &stmt))
	stmt.AccountNo = "123456"
	require.NoError(t, db.UpdateStatement(ctx, stmt))

	got, err := db.GetStatement(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, "123456", got.AccountNo)
	assert.Empty(t, got.Currency)
	assert.Equal(t, stmt.Details, got.Details)

	l := common.BankLog{CompanyID: companyID, Filename: stmt.Filename, Status: common.StatusUnknown, ProcessedAt: stmt.ProcessedAt}
	require.NoError(t, db.CreateBankLog(ctx, &l))
	n, err := db.DeleteBankLogs(ctx, stmt.Filename)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	require.NoError(t, db.DeleteStatement(ctx, stmt.ID))
	_, err = db.GetStatement(ctx, stmt.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
