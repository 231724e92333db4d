package filestore

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
banks:
  - bank_code: vcb
    bank_name: Vietcombank
    keywords: [vietcombank]
    scan_ranges:
      - name: title
        range: A1:H5
        sheet_name: Sheet1
    mappings:
      - identify_info: currency
        keywords: [Currency]
        col_keyword: A
        col_value: A
      - identify_info: transactiondate
        col_value: A
        row_start: 12
        cell_format: "%d/%m/%Y"
  - company_id: 2
    bank_code: ACB
    keywords: [acb]
    is_active: false
    mappings:
      - identify_info: narrative
        col_value: C
`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(catalogYAML)))
	c, err := LoadCatalog(v, "banks")
	require.NoError(t, err)
	return c
}

func TestLoadCatalog(t *testing.T) {
	c := loadTestCatalog(t)
	ctx := context.Background()

	banks, err := c.BankConfigs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, "VCB", banks[0].BankCode)
	assert.True(t, banks[0].IsActive)
	assert.Equal(t, common.ScanRange{Name: "title", Range: "A1:H5", SheetName: "Sheet1"}, banks[0].ScanRanges[0])

	banks, err = c.BankConfigs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.False(t, banks[1].IsActive)

	mappings, err := c.FieldMappings(ctx, 1, "vcb")
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, "%d/%m/%Y", mappings[1].CellFormat)
	assert.Equal(t, 12, mappings[1].RowStart)

	mappings, err = c.FieldMappings(ctx, 1, "ACB")
	require.NoError(t, err)
	assert.Empty(t, mappings)

	allBanks, allMappings := c.All()
	assert.Len(t, allBanks, 2)
	assert.Len(t, allMappings, 3)
}

func TestStore_StatementLifecycle(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	stmt := common.Statement{
		BankCode:    "VCB",
		Status:      common.StatusSuccess,
		Currency:    "VND",
		Details:     []common.Transaction{{TransactionDate: "01112023", Narrative: "Salary", Credit: "500000", ReferenceNumber: "FT1"}},
		ProcessedAt: time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateStatement(ctx, &stmt))
	require.NotEmpty(t, stmt.ID)

	got, err := s.GetStatement(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, stmt, got)

	got.MT940Filename = "mt940/x.mt940.txt"
	require.NoError(t, s.UpdateStatement(ctx, got))
	again, err := s.GetStatement(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, "mt940/x.mt940.txt", again.MT940Filename)

	require.NoError(t, s.DeleteStatement(ctx, stmt.ID))
	_, err = s.GetStatement(ctx, stmt.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, s.DeleteStatement(ctx, stmt.ID), common.ErrNotFound)
	assert.ErrorIs(t, s.UpdateStatement(ctx, got), common.ErrNotFound)
}

func TestStore_RejectsPathLikeIDs(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.GetStatement(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_BankLogs(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	entries := []common.BankLog{
		{CompanyID: 1, UserID: 2, BankCode: "VCB", Filename: "up/a.xlsx", OriginalFilename: "a.xlsx", Status: common.StatusSuccess, Message: "Detected, \"VCB\"", DetectedKeywords: []string{"vietcombank", "vcb"}, ProcessedAt: at},
		{CompanyID: 1, Filename: "up/b.xlsx", Status: common.StatusUnknown, Message: "No matching bank", ProcessedAt: at},
		{CompanyID: 1, Filename: "up/a.xlsx", Status: common.StatusFailed, Message: "line one\nline two", ProcessedAt: at},
	}
	for i := range entries {
		require.NoError(t, s.CreateBankLog(ctx, &entries[i]))
		assert.NotEmpty(t, entries[i].ID)
	}

	logs, err := s.BankLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, logs)

	n, err := s.DeleteBankLogs(ctx, "up/a.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	logs, err = s.BankLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "up/b.xlsx", logs[0].Filename)

	n, err = s.DeleteBankLogs(ctx, "nope")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReadBankLogs_BadRow(t *testing.T) {
	body := bankLogHeader + "\n" + strings.Join([]string{"id", "x", "0", "", "", "", "", "", "", ""}, ",") + "\n"
	_, err := readBankLogs(strings.NewReader(body))
	assert.ErrorContains(t, err, "company_id")
}
