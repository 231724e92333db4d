package fields

import (
	"sort"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/sheet"
	"github.com/sirupsen/logrus"
)

// Extraction is everything pulled out of one workbook.
type Extraction struct {
	Header  common.Header
	Details []common.Transaction
}

// Extract runs header extraction and detail assembly over the workbook.
func Extract(wb *sheet.Workbook, mappings []common.FieldMappingConfig) Extraction {
	return Extraction{
		Header:  ExtractHeader(wb, mappings),
		Details: AssembleDetails(wb, mappings),
	}
}

// ExtractHeader looks up every header field, trying each sheet in workbook
// order until one yields a value. When a field is mapped more than once the
// first mapping that yields a value wins.
func ExtractHeader(wb *sheet.Workbook, mappings []common.FieldMappingConfig) common.Header {
	var h common.Header
	for _, l := range resolve(mappings, common.Field.IsHeader) {
		if h.Get(l.Field) != "" {
			continue
		}
		v, ok := tryInOrder(wb.Sheets, func(s sheet.Sheet) (string, bool) {
			return FindValue(s.Grid, l)
		})
		if !ok {
			log.WithField("field", l.Field).Debug("Header field not found")
			continue
		}
		h.Set(l.Field, v)
	}
	return h
}

// resolve turns mapping rows into lookups for the fields keep accepts,
// ordered by field. Unknown identities are dropped with a warning.
func resolve(mappings []common.FieldMappingConfig, keep func(common.Field) bool) []Lookup {
	var out []Lookup
	for _, m := range mappings {
		l, err := LookupFor(m)
		if err != nil {
			log.WithFields(logrus.Fields{
				"bank_code":     m.BankCode,
				"identify_info": m.IdentifyInfo,
			}).Warn("Ignoring mapping with unknown field identity")
			continue
		}
		if keep(l.Field) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// tryInOrder returns the first successful result of try over candidates.
func tryInOrder[C, R any](candidates []C, try func(C) (R, bool)) (R, bool) {
	for _, c := range candidates {
		if r, ok := try(c); ok {
			return r, true
		}
	}
	var zero R
	return zero, false
}
