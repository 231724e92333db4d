package fields

import (
	"testing"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerGrid() sheet.Grid {
	return sheet.NewGrid([][]string{
		{"SAO KÊ TÀI KHOẢN", "", ""},
		{"Currency: VND", "", ""},
		{"Account No: 98765432 - Name: John", "", ""},
		{"Số dư đầu kỳ", "", "1,000,000"},
		{"Closing balance: 1.400.000 VND", "", ""},
		{"Số dư cuối kỳ", "", ""},
	})
}

func TestFindValue_SmartCurrencySameColumn(t *testing.T) {
	v, ok := FindValue(headerGrid(), Lookup{
		Field: common.Currency, Keywords: []string{"Currency"}, KeywordColumn: "A", ValueColumn: "A",
	})
	require.True(t, ok)
	assert.Equal(t, "VND", v)
}

func TestFindValue_SmartAccount(t *testing.T) {
	v, ok := FindValue(headerGrid(), Lookup{
		Field: common.AccountNo, Keywords: []string{"account no"}, KeywordColumn: "A", ValueColumn: "A",
	})
	require.True(t, ok)
	assert.Contains(t, v, "98765432")
	assert.GreaterOrEqual(t, len(v), 4)
	assert.LessOrEqual(t, len(v), 20)
}

func TestFindValue_SeparateValueColumnSkipsSmart(t *testing.T) {
	v, ok := FindValue(headerGrid(), Lookup{
		Field: common.OpeningBalance, Keywords: []string{"số dư đầu kỳ"}, KeywordColumn: "A", ValueColumn: "C",
	})
	require.True(t, ok)
	assert.Equal(t, "1,000,000", v)
}

func TestFindValue_SmartBalance(t *testing.T) {
	v, ok := FindValue(headerGrid(), Lookup{
		Field: common.ClosingBalance, Keywords: []string{"closing balance"}, KeywordColumn: "A", ValueColumn: "A",
	})
	require.True(t, ok)
	assert.Equal(t, "1400000", v)
}

func TestFindValue_BlankValueKeepsScanning(t *testing.T) {
	g := headerGrid()
	g = append(g, []string{"Số dư cuối kỳ", "", "1,400,000"})

	v, ok := FindValue(g, Lookup{
		Field: common.ClosingBalance, Keywords: []string{"số dư cuối kỳ"}, KeywordColumn: "A", ValueColumn: "C",
	})
	require.True(t, ok)
	assert.Equal(t, "1,400,000", v)
}

func TestFindValue_RowWindow(t *testing.T) {
	l := Lookup{Field: common.Currency, Keywords: []string{"currency"}, KeywordColumn: "A", ValueColumn: "A", RowStart: 3}
	_, ok := FindValue(headerGrid(), l)
	assert.False(t, ok, "keyword row 2 is outside rows 3..end")

	l.RowStart, l.RowEnd = 1, 2
	v, ok := FindValue(headerGrid(), l)
	require.True(t, ok)
	assert.Equal(t, "VND", v)
}

func TestFindValue_RowTextWhenNoColumns(t *testing.T) {
	v, ok := FindValue(headerGrid(), Lookup{Field: common.Narrative, Keywords: []string{"sao kê"}})
	require.True(t, ok)
	assert.Equal(t, "SAO KÊ TÀI KHOẢN", v)
}

func TestFindValue_HeaderNameColumn(t *testing.T) {
	g := sheet.NewGrid([][]string{
		{"Label", "Value"},
		{"Currency", "usd"},
	})
	v, ok := FindValue(g, Lookup{Field: common.Currency, Keywords: []string{"currency"}, KeywordColumn: "Label", ValueColumn: "Value"})
	require.True(t, ok)
	assert.Equal(t, "usd", v, "smart extraction only applies when both columns are the same")
}

func TestFindValue_BlankValueColumnUsesSmart(t *testing.T) {
	v, ok := FindValue(headerGrid(), Lookup{Field: common.Currency, Keywords: []string{"Currency"}, KeywordColumn: "A"})
	require.True(t, ok)
	assert.Equal(t, "VND", v)

	g := sheet.NewGrid([][]string{{"Opening balance: 1,000,000"}})
	v, ok = FindValue(g, Lookup{Field: common.OpeningBalance, Keywords: []string{"opening balance"}, KeywordColumn: "A"})
	require.True(t, ok)
	assert.Equal(t, "1000000", v)
}

func TestFindValue_NoMatch(t *testing.T) {
	_, ok := FindValue(headerGrid(), Lookup{Field: common.Currency, Keywords: []string{"tiền tệ"}, KeywordColumn: "A"})
	assert.False(t, ok)
}

func TestSmart_Currency(t *testing.T) {
	v, ok := Smart(common.Currency, "5,000,000 VND", "")
	require.True(t, ok)
	assert.Equal(t, "VND", v)

	_, ok = Smart(common.Currency, "5,000,000 XYZ", "")
	assert.False(t, ok, "codes outside the whitelist are rejected")

	v, ok = Smart(common.Currency, "Loại tiền (currency): usd", "currency")
	require.True(t, ok)
	assert.Equal(t, "USD", v)
}

func TestSmart_Account(t *testing.T) {
	v, ok := Smart(common.AccountNo, "Số TK: 0011-0012-3456-789", "số tk")
	require.True(t, ok)
	assert.Equal(t, "0011", v)

	v, ok = Smart(common.AccountNo, "TK0011001234567X", "tk")
	require.True(t, ok)
	assert.Equal(t, "0011001234567", v)

	_, ok = Smart(common.AccountNo, "Account: n/a", "account")
	assert.False(t, ok)
}

func TestSmart_Balance(t *testing.T) {
	cases := map[string]string{
		"Opening balance: 1,234,567.89 VND": "1234567.89",
		"Opening balance 5.000.000":         "5000000",
		"Opening balance: -250,000":         "-250000",
		"Opening balance 42":                "42",
	}
	for raw, want := range cases {
		v, ok := Smart(common.OpeningBalance, raw, "opening balance")
		require.True(t, ok, raw)
		assert.Equal(t, want, v, raw)
	}

	_, ok := Smart(common.OpeningBalance, "Opening balance: none", "opening balance")
	assert.False(t, ok)
}

func TestSmart_OtherFieldsUnchanged(t *testing.T) {
	v, ok := Smart(common.Narrative, "  raw text ", "")
	require.True(t, ok)
	assert.Equal(t, "  raw text ", v)
}

func TestIsCurrency(t *testing.T) {
	assert.True(t, IsCurrency(" vnd "))
	assert.False(t, IsCurrency("VN"))
}

func TestLookupFor_UnknownField(t *testing.T) {
	_, err := LookupFor(common.FieldMappingConfig{IdentifyInfo: "curency"})
	assert.Error(t, err)
}
