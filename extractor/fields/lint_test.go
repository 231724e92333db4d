package fields

import (
	"strings"
	"testing"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/stretchr/testify/assert"
)

func messages(problems []Problem) string {
	var b strings.Builder
	for _, p := range problems {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func TestLint_CleanConfig(t *testing.T) {
	banks := []common.BankIdentityConfig{{
		BankCode:   "VCB",
		Keywords:   []string{"vietcombank"},
		ScanRanges: []common.ScanRange{{Name: "head", Range: "A1:H10"}},
	}}
	mappings := []common.FieldMappingConfig{
		{BankCode: "VCB", IdentifyInfo: "currency", Keywords: []string{"currency"}, ColKeyword: "A"},
		{BankCode: "VCB", IdentifyInfo: "openingbalance", Keywords: []string{"opening"}, ColKeyword: "A"},
		{BankCode: "VCB", IdentifyInfo: "closingbalance", Keywords: []string{"closing"}, ColKeyword: "A"},
		{BankCode: "VCB", IdentifyInfo: "transactiondate", ColValue: "A", RowStart: 12},
		{BankCode: "VCB", IdentifyInfo: "narrative", ColValue: "B", RowStart: 12},
	}

	assert.Empty(t, Lint(banks, mappings))
}

func TestLint_ReportsMistakes(t *testing.T) {
	banks := []common.BankIdentityConfig{{
		BankCode:   "ACB",
		ScanRanges: []common.ScanRange{{Name: "head", Range: "A1-H10"}},
	}}
	mappings := []common.FieldMappingConfig{
		{BankCode: "ACB", IdentifyInfo: "transactoindate", ColValue: "A"},
		{BankCode: "ACB", IdentifyInfo: "currency", ColKeyword: "A"},
		{BankCode: "ACB", IdentifyInfo: "currency", Keywords: []string{"ccy"}, ColKeyword: "A"},
		{BankCode: "ACB", IdentifyInfo: "narrative", ColValue: "B", RowStart: 10, RowEnd: 5},
		{BankCode: "ACB", IdentifyInfo: "debit", RowStart: 3},
	}

	out := messages(Lint(banks, mappings))
	assert.Contains(t, out, "[ACB] bank has no detection keywords")
	assert.Contains(t, out, `malformed range "A1-H10"`)
	assert.Contains(t, out, `unknown field identity "transactoindate", did you mean "transactiondate"?`)
	assert.Contains(t, out, "header field currency has no keywords")
	assert.Contains(t, out, "field currency is mapped 2 times")
	assert.Contains(t, out, "row_start 10 after row_end 5")
	assert.Contains(t, out, "detail field debit has no column")
	assert.Contains(t, out, "required field openingbalance is not mapped")
	assert.Contains(t, out, "required field transactiondate is not mapped")
	assert.Contains(t, out, "different row windows")
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "closingbalance", Suggest("closing_balance"))
	assert.Equal(t, "reference_number", Suggest("referencenumber"))
}
