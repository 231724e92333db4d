package sheet

import (
	"fmt"

	"github.com/aqlanhadi/mt940kit/extractor/common"
)

// RangeText is the flattened text of one scan range.
type RangeText struct {
	Range common.ScanRange
	Sheet string
	Text  string
}

// ReadRange flattens a scan range of the workbook into text, one line per row.
func ReadRange(wb *Workbook, sr common.ScanRange) (RangeText, error) {
	cr, ok := ParseRange(sr.Range)
	if !ok {
		return RangeText{}, fmt.Errorf("invalid range %q", sr.Range)
	}
	s, ok := wb.Sheet(sr.SheetName)
	if !ok {
		return RangeText{}, fmt.Errorf("workbook has no sheets")
	}
	return RangeText{Range: sr, Sheet: s.Name, Text: s.Grid.Text(cr)}, nil
}

// ReadRanges reads each range in order, skipping the ones that cannot be read.
func ReadRanges(wb *Workbook, ranges []common.ScanRange) []RangeText {
	out := make([]RangeText, 0, len(ranges))
	for _, sr := range ranges {
		rt, err := ReadRange(wb, sr)
		if err != nil {
			log.WithError(err).WithField("range", sr.Name).Warn("Skipping scan range")
			continue
		}
		out = append(out, rt)
	}
	return out
}
