package fields

import (
	"sort"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/sheet"
	"github.com/sirupsen/logrus"
)

// DetailWindow picks the row window shared by the detail mappings: the window
// of the first detail field in canonical order (transaction date first).
// consistent is false when other detail mappings declare a different window.
func DetailWindow(lookups []Lookup) (rowStart, rowEnd int, consistent bool) {
	if len(lookups) == 0 {
		return 0, 0, true
	}
	rowStart, rowEnd = lookups[0].RowStart, lookups[0].RowEnd
	consistent = true
	for _, l := range lookups[1:] {
		if l.RowStart != rowStart || l.RowEnd != rowEnd {
			consistent = false
		}
	}
	return rowStart, rowEnd, consistent
}

// AssembleDetails builds transaction records from the first sheet that
// yields at least one accepted row, sorted by date.
func AssembleDetails(wb *sheet.Workbook, mappings []common.FieldMappingConfig) []common.Transaction {
	lookups := resolve(mappings, common.Field.IsDetail)
	if len(lookups) == 0 {
		return nil
	}

	rowStart, rowEnd, consistent := DetailWindow(lookups)
	if !consistent {
		log.WithFields(logrus.Fields{
			"row_start": rowStart,
			"row_end":   rowEnd,
			"field":     lookups[0].Field,
		}).Warn("Detail mappings disagree on the row window, using the first field's window")
	}

	var dateLayouts []string
	for _, m := range mappings {
		if f, err := m.Field(); err == nil && f == common.TransactionDate && m.CellFormat != "" {
			dateLayouts = append(dateLayouts, common.StrftimeLayout(m.CellFormat))
		}
	}

	details, _ := tryInOrder(wb.Sheets, func(s sheet.Sheet) ([]common.Transaction, bool) {
		txs := assembleSheet(s.Grid, lookups, rowStart, rowEnd, dateLayouts)
		if len(txs) > 0 {
			log.WithFields(logrus.Fields{"sheet": s.Name, "count": len(txs)}).Debug("Assembled transactions")
		}
		return txs, len(txs) > 0
	})
	sortByDate(details)
	return details
}

type column struct {
	field common.Field
	index int
}

func assembleSheet(g sheet.Grid, lookups []Lookup, rowStart, rowEnd int, dateLayouts []string) []common.Transaction {
	var cols []column
	for _, l := range lookups {
		idx, ok := g.ResolveColumn(l.ValueColumn)
		if !ok {
			idx, ok = g.ResolveColumn(l.KeywordColumn)
		}
		if ok {
			cols = append(cols, column{field: l.Field, index: idx})
		}
	}
	if len(cols) == 0 {
		return nil
	}

	var out []common.Transaction
	from, to := g.Window(rowStart, rowEnd)
	for row := from; row <= to; row++ {
		if g.RowText(row) == "" {
			continue
		}
		b := recordBuilder{}
		for _, c := range cols {
			b.set(c.field, g.Cell(row, c.index))
		}
		if tx, ok := b.finish(dateLayouts); ok {
			out = append(out, tx)
		}
	}
	return out
}

// recordBuilder collects one row's fields and decides, once every column has
// been probed, whether the row becomes a transaction.
type recordBuilder struct {
	tx     common.Transaction
	filled bool
}

func (b *recordBuilder) set(f common.Field, v string) {
	if v == "" {
		return
	}
	b.tx.Set(f, v)
	b.filled = true
}

// finish accepts the record only with a parseable date and a narrative.
func (b *recordBuilder) finish(dateLayouts []string) (common.Transaction, bool) {
	if !b.filled {
		return common.Transaction{}, false
	}
	date, ok := common.CanonicalDate(b.tx.TransactionDate, dateLayouts...)
	if !ok || b.tx.Narrative == "" {
		return common.Transaction{}, false
	}
	b.tx.TransactionDate = date
	return b.tx, true
}

// sortByDate orders transactions by date; unparseable dates sort last.
func sortByDate(txs []common.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		di, oki := txs[i].Date()
		dj, okj := txs[j].Date()
		switch {
		case oki && okj:
			return di.Before(dj)
		case oki:
			return true
		}
		return false
	})
}
