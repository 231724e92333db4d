// Package fields pulls configured statement fields out of loaded sheets.
package fields

import (
	"fmt"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/sheet"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Lookup describes where one field lives in a sheet.
type Lookup struct {
	Field         common.Field
	Keywords      []string
	KeywordColumn string
	ValueColumn   string
	RowStart      int
	RowEnd        int
}

// LookupFor builds a Lookup from a mapping row, rejecting unknown fields.
func LookupFor(cfg common.FieldMappingConfig) (Lookup, error) {
	f, err := cfg.Field()
	if err != nil {
		return Lookup{}, fmt.Errorf("failed to resolve mapping: %w", err)
	}
	return Lookup{
		Field:         f,
		Keywords:      cfg.Keywords,
		KeywordColumn: cfg.ColKeyword,
		ValueColumn:   cfg.ColValue,
		RowStart:      cfg.RowStart,
		RowEnd:        cfg.RowEnd,
	}, nil
}

type hit struct {
	raw        string
	keyword    string
	sameColumn bool
}

// FindValue scans the lookup's row window for the first row containing one
// of its keywords and returns the associated value. Header fields whose
// keyword and value share a column go through smart extraction.
func FindValue(g sheet.Grid, l Lookup) (string, bool) {
	h, ok := findRaw(g, l)
	if !ok {
		return "", false
	}
	if h.sameColumn && l.Field.IsHeader() {
		return Smart(l.Field, h.raw, h.keyword)
	}
	return h.raw, true
}

// findRaw returns the first non-blank value on a keyword row. The value is
// the value column cell, else the keyword column cell, else the row text.
func findRaw(g sheet.Grid, l Lookup) (hit, bool) {
	kwIdx, kwOK := g.ResolveColumn(l.KeywordColumn)
	valIdx, valOK := g.ResolveColumn(l.ValueColumn)
	// A blank value column reads from the keyword column.
	same := !valOK || (kwOK && kwIdx == valIdx)

	from, to := g.Window(l.RowStart, l.RowEnd)
	for row := from; row <= to; row++ {
		text := g.RowText(row)
		if text == "" {
			continue
		}
		kw, ok := common.MatchKeyword(text, l.Keywords)
		if !ok {
			continue
		}

		var raw string
		switch {
		case valOK:
			raw = g.Cell(row, valIdx)
		case kwOK:
			raw = g.Cell(row, kwIdx)
		default:
			raw = text
		}
		if raw == "" {
			log.WithFields(logrus.Fields{"field": l.Field, "row": row + 1}).Debug("Keyword row has no value, continuing")
			continue
		}
		return hit{raw: raw, keyword: kw, sameColumn: same}, true
	}
	return hit{}, false
}
