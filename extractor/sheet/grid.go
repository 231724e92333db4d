package sheet

import (
	"strconv"
	"strings"
)

// Grid is a rectangular matrix of cell text. Missing cells are empty strings.
// Row 0 is the first spreadsheet row and doubles as the header row when
// columns are addressed by name.
type Grid [][]string

// NewGrid pads rows so every row has the same width.
func NewGrid(rows [][]string) Grid {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	g := make(Grid, len(rows))
	for i, r := range rows {
		row := make([]string, width)
		copy(row, r)
		g[i] = row
	}
	return g
}

func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Cell returns the trimmed value at (row, col) or "" when out of bounds.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return strings.TrimSpace(g[row][col])
}

// RowText joins the non-empty cells of a row with single spaces.
func (g Grid) RowText(row int) string {
	return g.rowText(row, 0, g.Width()-1)
}

func (g Grid) rowText(row, from, to int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	parts := make([]string, 0, max(0, to-from+1))
	for c := max(from, 0); c <= to && c < len(g[row]); c++ {
		if v := strings.TrimSpace(g[row][c]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// ResolveColumn resolves a header name from the first row, falling back to a
// column label. Columns outside the grid do not resolve.
func (g Grid) ResolveColumn(name string) (int, bool) {
	n := strings.TrimSpace(name)
	if n == "" {
		return 0, false
	}
	if len(g) > 0 {
		for i, h := range g[0] {
			if h = strings.TrimSpace(h); h != "" && strings.EqualFold(h, n) {
				return i, true
			}
		}
	}
	idx, ok := ColumnLabelToIndex(n)
	if !ok || idx >= g.Width() {
		return 0, false
	}
	return idx, true
}

// Window converts a 1-based inclusive row window into 0-based bounds clamped
// to the grid. Zero or negative values leave that end open. The window is
// empty when from > to.
func (g Grid) Window(rowStart, rowEnd int) (from, to int) {
	from, to = 0, len(g)-1
	if rowStart > 0 {
		from = rowStart - 1
	}
	if rowEnd > 0 {
		to = min(rowEnd-1, len(g)-1)
	}
	return from, to
}

// Text renders a rectangle as one line per row.
func (g Grid) Text(r CellRange) string {
	if len(g) == 0 {
		return ""
	}
	lines := make([]string, 0, r.EndRow-r.StartRow+1)
	for row := r.StartRow; row <= r.EndRow && row < len(g); row++ {
		lines = append(lines, g.rowText(row, r.StartCol, r.EndCol))
	}
	return strings.Join(lines, "\n")
}

type Sheet struct {
	Name string
	Grid Grid
}

// Workbook is every sheet of a loaded file in workbook order.
type Workbook struct {
	Sheets []Sheet
}

// Sheet picks a sheet by name (exact, then case-insensitive), then by
// 0-based numeric index, falling back to the first sheet. The second result
// is false only when the workbook is empty.
func (wb *Workbook) Sheet(ref string) (Sheet, bool) {
	if wb == nil || len(wb.Sheets) == 0 {
		return Sheet{}, false
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return wb.Sheets[0], true
	}
	for _, s := range wb.Sheets {
		if s.Name == ref {
			return s, true
		}
	}
	for _, s := range wb.Sheets {
		if strings.EqualFold(s.Name, ref) {
			return s, true
		}
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(wb.Sheets) {
		return wb.Sheets[i], true
	}
	log.WithField("sheet", ref).Debug("Sheet not found, using first sheet")
	return wb.Sheets[0], true
}
