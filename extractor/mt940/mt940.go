// Package mt940 renders a parsed statement as MT940 text.
//
// The output is a fixed sequence of tagged lines: :20:, an optional :25:,
// :28C:, :60F:, one :61:/:86: pair per transaction and a final :62F:.
package mt940

import (
	"strings"
	"time"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/shopspring/decimal"
)

const (
	referenceSuffix = "VNXXX"
	statementNumber = "00000/001"
	defaultTrxType  = "NTRF"
	noReference     = "NONREF"
	dateLayout      = "060102"
	maxDetails      = 200
)

var integralEpsilon = decimal.New(1, -6)

// Balance is a :60F: or :62F: value. Balances are always written as credits.
type Balance struct {
	Date     time.Time
	Currency string
	Amount   string
}

// Entry is one :61: statement line with its :86: details.
type Entry struct {
	Date      time.Time
	Mark      string
	Amount    string
	Type      string
	Reference string
	Details   string
}

// Document is the tag-level model of one MT940 statement.
type Document struct {
	Reference       string
	Account         string
	StatementNumber string
	Opening         Balance
	Entries         []Entry
	Closing         Balance
}

// Build renders stmt. now is only used as the balance date when the
// statement has no dated transactions, so a fixed now yields identical output.
func Build(stmt common.Statement, now time.Time) string {
	return FromStatement(stmt, now).String()
}

// FromStatement maps a statement onto the MT940 tag model. Only transactions
// with a date and a narrative become entries.
func FromStatement(stmt common.Statement, now time.Time) Document {
	bank := strings.ToUpper(strings.TrimSpace(stmt.BankCode))
	if bank == "" {
		bank = "UNK"
	}
	currency := strings.ToUpper(strings.TrimSpace(stmt.Currency))

	txs := entryCandidates(stmt.Details)
	minDate, maxDate := dateSpan(txs, now)

	doc := Document{
		Reference:       bank + referenceSuffix,
		Account:         strings.TrimSpace(stmt.AccountNo),
		StatementNumber: statementNumber,
		Opening:         Balance{Date: minDate, Currency: currency, Amount: FormatText(stmt.OpeningBalance)},
		Closing:         Balance{Date: maxDate, Currency: currency, Amount: FormatText(stmt.ClosingBalance)},
	}
	for _, tx := range txs {
		doc.Entries = append(doc.Entries, entryFor(tx, minDate))
	}
	return doc
}

func entryCandidates(details []common.Transaction) []common.Transaction {
	var out []common.Transaction
	for _, tx := range details {
		if strings.TrimSpace(tx.TransactionDate) == "" || strings.TrimSpace(tx.Narrative) == "" {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func dateSpan(txs []common.Transaction, now time.Time) (time.Time, time.Time) {
	var minDate, maxDate time.Time
	for _, tx := range txs {
		d, ok := txDate(tx)
		if !ok {
			continue
		}
		if minDate.IsZero() || d.Before(minDate) {
			minDate = d
		}
		if maxDate.IsZero() || d.After(maxDate) {
			maxDate = d
		}
	}
	if minDate.IsZero() {
		minDate = now.UTC()
	}
	if maxDate.IsZero() {
		maxDate = now.UTC()
	}
	return minDate, maxDate
}

func txDate(tx common.Transaction) (time.Time, bool) {
	if d, ok := tx.Date(); ok {
		return d, true
	}
	return common.ParseDate(tx.TransactionDate, common.CanonicalDateLayout)
}

func entryFor(tx common.Transaction, fallback time.Time) Entry {
	e := Entry{Date: fallback, Type: defaultTrxType}
	if d, ok := txDate(tx); ok {
		e.Date = d
	}
	if t := strings.TrimSpace(tx.TransactionType); t != "" {
		e.Type = strings.ToUpper(t)
	}
	e.Reference = strings.TrimSpace(tx.ReferenceNumber)
	e.Mark, e.Amount = movement(tx)

	narrative := strings.TrimSpace(tx.Narrative)
	if flow := strings.TrimSpace(tx.FlowCode); flow != "" {
		narrative = flow + "_" + narrative
	}
	e.Details = truncate(common.CollapseSpaces(narrative), maxDetails)
	return e
}

// movement picks the D/C mark and amount. A non-zero credit wins and keeps
// its sign as the mark; otherwise debit, fee and vat are combined into a debit.
func movement(tx common.Transaction) (string, string) {
	credit := common.AmountOrZero(tx.Credit)
	if !credit.IsZero() {
		if credit.IsNegative() {
			return "D", FormatAmount(credit.Abs())
		}
		return "C", FormatAmount(credit)
	}
	out := common.AmountOrZero(tx.Debit).
		Add(common.AmountOrZero(tx.TransactionFee)).
		Add(common.AmountOrZero(tx.TransactionVat))
	if !out.IsZero() {
		return "D", FormatAmount(out.Abs())
	}
	return "C", "0"
}

// FormatAmount writes whole amounts without decimals and everything else
// with two decimals and a decimal comma: 1234.5 becomes "1234,50".
func FormatAmount(d decimal.Decimal) string {
	whole := d.Truncate(0)
	if d.Sub(whole).Abs().LessThan(integralEpsilon) {
		return whole.String()
	}
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// FormatText is FormatAmount for raw statement text; unparseable input is "0".
func FormatText(s string) string {
	d, err := common.CleanDecimal(s)
	if err != nil {
		return "0"
	}
	return FormatAmount(d)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Lines renders the document tag by tag.
func (d Document) Lines() []string {
	lines := []string{":20:" + d.Reference}
	if d.Account != "" {
		lines = append(lines, ":25:"+d.Account)
	}
	lines = append(lines, ":28C:"+d.StatementNumber)
	lines = append(lines, ":60F:"+d.Opening.field())
	for _, e := range d.Entries {
		lines = append(lines, ":61:"+e.field())
		if e.Details != "" {
			lines = append(lines, ":86:"+e.Details)
		}
	}
	lines = append(lines, ":62F:"+d.Closing.field())
	return lines
}

func (d Document) String() string {
	return strings.Join(d.Lines(), "\n")
}

func (b Balance) field() string {
	return "C" + b.Date.Format(dateLayout) + b.Currency + b.Amount
}

func (e Entry) field() string {
	var sb strings.Builder
	sb.WriteString(e.Date.Format(dateLayout))
	sb.WriteString(e.Mark)
	sb.WriteString(e.Amount)
	sb.WriteString(e.Type)
	if e.Reference != "" {
		sb.WriteString(noReference)
		sb.WriteString("//")
		sb.WriteString(e.Reference)
	}
	return sb.String()
}
