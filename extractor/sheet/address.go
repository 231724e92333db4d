package sheet

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var rangeRegex = regexp.MustCompile(`(?i)^([A-Z]+)(\d+):([A-Z]+)(\d+)$`)

// CellRange is a 0-based inclusive rectangle.
type CellRange struct {
	StartCol, StartRow int
	EndCol, EndRow     int
}

// ColumnLabelToIndex converts "A", "aa" or a 1-based numeric string to a
// 0-based column index.
func ColumnLabelToIndex(label string) (int, bool) {
	l := strings.TrimSpace(label)
	if l == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(l); err == nil {
		return max(0, n-1), true
	}
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(l))
	if err != nil {
		return 0, false
	}
	return n - 1, true
}

// IndexToColumnLabel is the inverse of ColumnLabelToIndex for letter labels.
func IndexToColumnLabel(idx int) string {
	name, err := excelize.ColumnNumberToName(idx + 1)
	if err != nil {
		return ""
	}
	return name
}

// ParseRange parses "A1:O5" into 0-based coordinates. Reversed corners are
// normalised so the start is always top-left.
func ParseRange(s string) (CellRange, bool) {
	m := rangeRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return CellRange{}, false
	}
	sc, ok1 := ColumnLabelToIndex(m[1])
	ec, ok2 := ColumnLabelToIndex(m[3])
	sr, err1 := strconv.Atoi(m[2])
	er, err2 := strconv.Atoi(m[4])
	if !ok1 || !ok2 || err1 != nil || err2 != nil || sr < 1 || er < 1 {
		return CellRange{}, false
	}
	r := CellRange{StartCol: sc, StartRow: sr - 1, EndCol: ec, EndRow: er - 1}
	if r.StartCol > r.EndCol {
		r.StartCol, r.EndCol = r.EndCol, r.StartCol
	}
	if r.StartRow > r.EndRow {
		r.StartRow, r.EndRow = r.EndRow, r.StartRow
	}
	return r, true
}
