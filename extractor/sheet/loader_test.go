package sheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func buildXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "VIETCOMBANK"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Currency: VND"))
	require.NoError(t, f.SetCellValue("Sheet1", "C4", 500000))
	_, err := f.NewSheet("Details")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Details", "B1", "Narrative"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoadBytes_XLSX(t *testing.T) {
	wb, err := LoadBytes(buildXLSX(t), "xlsx", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)

	first := wb.Sheets[0]
	assert.Equal(t, "Sheet1", first.Name)
	assert.Equal(t, "VIETCOMBANK", first.Grid.Cell(0, 0))
	assert.Equal(t, "Currency: VND", first.Grid.Cell(1, 0))
	assert.Equal(t, "500000", first.Grid.Cell(3, 2))
	assert.Equal(t, "", first.Grid.Cell(3, 1), "missing cells are empty strings")
	for _, row := range first.Grid {
		assert.Len(t, row, first.Grid.Width())
	}

	assert.Equal(t, "Details", wb.Sheets[1].Name)
}

func TestLoadBytes_XLSXNamedXLS(t *testing.T) {
	wb, err := LoadBytes(buildXLSX(t), ".XLS", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "VIETCOMBANK", wb.Sheets[0].Grid.Cell(0, 0))
}

func TestLoadBytes_CSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFDate,Narrative,Credit\n01/11/2023,Salary,500000\n02/11/2023,ATM\n")
	wb, err := LoadBytes(data, "csv", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	g := wb.Sheets[0].Grid
	assert.Equal(t, "sheet1", wb.Sheets[0].Name)
	assert.Equal(t, "Date", g.Cell(0, 0))
	assert.Equal(t, "500000", g.Cell(1, 2))
	assert.Equal(t, "", g.Cell(2, 2))
	assert.Equal(t, 3, g.Width())
}

func TestLoadBytes_CSVSemicolon(t *testing.T) {
	wb, err := LoadBytes([]byte("a;b;c\n1;2;3\n"), "csv", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "3", wb.Sheets[0].Grid.Cell(1, 2))
}

func TestLoadBytes_CSVLegacyEncoding(t *testing.T) {
	encoded, err := charmap.Windows1258.NewEncoder().String("Ngân hàng,100\n")
	require.NoError(t, err)

	wb, err := LoadBytes([]byte(encoded), "csv", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Ngân hàng", wb.Sheets[0].Grid.Cell(0, 0))
}

func TestLoadBytes_Text(t *testing.T) {
	wb, err := LoadBytes([]byte("line one\r\nline two\n"), "txt", DefaultOptions())
	require.NoError(t, err)
	g := wb.Sheets[0].Grid
	require.Len(t, g, 2)
	assert.Equal(t, "line two", g.Cell(1, 0))
}

func TestLoadBytes_Unsupported(t *testing.T) {
	_, err := LoadBytes([]byte("hello"), "docx", DefaultOptions())
	assert.True(t, errors.Is(err, common.ErrUnsupportedFormat))
}

func TestLoadBytes_CorruptXLSX(t *testing.T) {
	_, err := LoadBytes([]byte("PK\x03\x04garbage"), "xlsx", DefaultOptions())
	assert.Error(t, err)
}

func TestLoad_FromDiskUsesPathExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n"), 0o644))

	wb, err := Load(path, "", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "y", wb.Sheets[0].Grid.Cell(0, 1))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), "", DefaultOptions())
	assert.Error(t, err)
}
