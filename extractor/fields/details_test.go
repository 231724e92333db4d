package fields

import (
	"math/rand"
	"testing"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detailMappings(rowStart, rowEnd int) []common.FieldMappingConfig {
	m := func(field, col string) common.FieldMappingConfig {
		return common.FieldMappingConfig{BankCode: "VCB", IdentifyInfo: field, ColValue: col, RowStart: rowStart, RowEnd: rowEnd}
	}
	return []common.FieldMappingConfig{
		m("narrative", "B"),
		m("transactiondate", "A"),
		m("credit", "C"),
		m("debit", "D"),
		m("reference_number", "E"),
	}
}

func detailRows() [][]string {
	return [][]string{
		{"Ngày", "Diễn giải", "Có", "Nợ", "Số CT"},
		{"02/11/2023", "ATM", "", "100,000", "FT2"},
		{"", "", "", "", ""},
		{"01/11/2023", "Salary", "500,000", "", "FT1"},
		{"not a date", "Fee", "", "5,000", ""},
		{"03/11/2023", "", "", "1,000", ""},
		{"", "", "", "", "orphan"},
		{"Tổng cộng", "", "500,000", "100,000", ""},
	}
}

func TestAssembleDetails_FiltersAndSorts(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{Name: "s", Grid: sheet.NewGrid(detailRows())}}}

	got := AssembleDetails(wb, detailMappings(2, 0))
	require.Len(t, got, 2)

	assert.Equal(t, common.Transaction{
		TransactionDate: "01112023", Narrative: "Salary", Credit: "500,000", ReferenceNumber: "FT1",
	}, got[0])
	assert.Equal(t, common.Transaction{
		TransactionDate: "02112023", Narrative: "ATM", Debit: "100,000", ReferenceNumber: "FT2",
	}, got[1])
}

func TestAssembleDetails_InvariantsUnderPermutation(t *testing.T) {
	rows := detailRows()
	body := rows[1:]
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 25; i++ {
		shuffled := append([][]string{rows[0]}, body...)
		rnd.Shuffle(len(shuffled)-1, func(a, b int) {
			shuffled[a+1], shuffled[b+1] = shuffled[b+1], shuffled[a+1]
		})
		wb := &sheet.Workbook{Sheets: []sheet.Sheet{{Name: "s", Grid: sheet.NewGrid(shuffled)}}}

		got := AssembleDetails(wb, detailMappings(2, 0))
		require.Len(t, got, 2)
		for j, tx := range got {
			d, ok := tx.Date()
			require.True(t, ok)
			assert.NotEmpty(t, tx.Narrative)
			if j > 0 {
				prev, _ := got[j-1].Date()
				assert.False(t, d.Before(prev), "details must be non-decreasing by date")
			}
		}
	}
}

func TestAssembleDetails_FirstSheetWithRowsWins(t *testing.T) {
	empty := sheet.NewGrid([][]string{{"Cover page"}, {"nothing here"}})
	second := sheet.NewGrid(detailRows())
	third := sheet.NewGrid([][]string{{"h"}, {"05/11/2023", "Other"}})

	wb := &sheet.Workbook{Sheets: []sheet.Sheet{
		{Name: "cover", Grid: empty},
		{Name: "data", Grid: second},
		{Name: "more", Grid: third},
	}}
	got := AssembleDetails(wb, detailMappings(2, 0))
	require.Len(t, got, 2)
	assert.Equal(t, "Salary", got[0].Narrative)
}

func TestAssembleDetails_RowWindow(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{Name: "s", Grid: sheet.NewGrid(detailRows())}}}

	got := AssembleDetails(wb, detailMappings(2, 3))
	require.Len(t, got, 1)
	assert.Equal(t, "ATM", got[0].Narrative)
}

func TestAssembleDetails_KeywordColumnAsData(t *testing.T) {
	rows := [][]string{{"Date", "Text"}, {"2023-11-05", "Transfer"}}
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{Name: "s", Grid: sheet.NewGrid(rows)}}}
	mappings := []common.FieldMappingConfig{
		{IdentifyInfo: "transactiondate", ColKeyword: "Date", RowStart: 2},
		{IdentifyInfo: "narrative", ColKeyword: "text", RowStart: 2},
	}

	got := AssembleDetails(wb, mappings)
	require.Len(t, got, 1)
	assert.Equal(t, "05112023", got[0].TransactionDate)
}

func TestAssembleDetails_CellFormatHint(t *testing.T) {
	rows := [][]string{{"11/05/2023", "US style"}}
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{Name: "s", Grid: sheet.NewGrid(rows)}}}
	mappings := []common.FieldMappingConfig{
		{IdentifyInfo: "transactiondate", ColValue: "A", CellFormat: "%m/%d/%Y"},
		{IdentifyInfo: "narrative", ColValue: "B"},
	}

	got := AssembleDetails(wb, mappings)
	require.Len(t, got, 1)
	assert.Equal(t, "05112023", got[0].TransactionDate)
}

func TestAssembleDetails_UnknownMappingIgnored(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{Name: "s", Grid: sheet.NewGrid(detailRows())}}}
	mappings := append(detailMappings(2, 0), common.FieldMappingConfig{IdentifyInfo: "narative", ColValue: "A"})

	got := AssembleDetails(wb, mappings)
	assert.Len(t, got, 2)
}

func TestAssembleDetails_NoDetailMappings(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{Name: "s", Grid: sheet.NewGrid(detailRows())}}}
	assert.Empty(t, AssembleDetails(wb, []common.FieldMappingConfig{{IdentifyInfo: "currency"}}))
}

func TestDetailWindow(t *testing.T) {
	start, end, ok := DetailWindow([]Lookup{
		{Field: common.TransactionDate, RowStart: 5, RowEnd: 40},
		{Field: common.Narrative, RowStart: 5, RowEnd: 40},
	})
	assert.True(t, ok)
	assert.Equal(t, 5, start)
	assert.Equal(t, 40, end)

	_, _, ok = DetailWindow([]Lookup{
		{Field: common.TransactionDate, RowStart: 5},
		{Field: common.Narrative, RowStart: 6},
	})
	assert.False(t, ok)
}

func TestExtractHeader_TriesSheetsInOrder(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{
		{Name: "detail", Grid: sheet.NewGrid(detailRows())},
		{Name: "header", Grid: headerGrid()},
	}}
	mappings := []common.FieldMappingConfig{
		{IdentifyInfo: "currency", Keywords: []string{"currency"}, ColKeyword: "A", ColValue: "A"},
		{IdentifyInfo: "openingbalance", Keywords: []string{"số dư đầu kỳ"}, ColKeyword: "A", ColValue: "C"},
		{IdentifyInfo: "accountno", Keywords: []string{"account no"}, ColKeyword: "A", ColValue: "A"},
		{IdentifyInfo: "closingbalance", Keywords: []string{"không có"}, ColKeyword: "A", ColValue: "A"},
	}

	h := ExtractHeader(wb, mappings)
	assert.Equal(t, "VND", h.Currency)
	assert.Equal(t, "1,000,000", h.OpeningBalance)
	assert.Equal(t, "98765432", h.AccountNo)
	assert.Empty(t, h.ClosingBalance)
}
