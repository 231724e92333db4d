package validate

import (
	"fmt"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the largest accepted gap between the stated and the
// computed closing balance.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Balance holds the arithmetic of the balance identity
// closing = opening + credit - debit - fee - vat.
type Balance struct {
	Opening     decimal.Decimal
	TotalCredit decimal.Decimal
	TotalDebit  decimal.Decimal
	TotalFee    decimal.Decimal
	TotalVat    decimal.Decimal
	Expected    decimal.Decimal
	Closing     decimal.Decimal
	Eligible    int
}

// BalanceError reports a closing balance that does not add up.
type BalanceError struct {
	Balance Balance
}

func (e *BalanceError) Error() string {
	b := e.Balance
	return fmt.Sprintf("closing balance does not match opening balance plus movements "+
		"(expected = opening + totalCredit - totalDebit - totalFee - totalVat)\n"+
		"opening=%s, totalCredit=%s, totalDebit=%s, totalFee=%s, totalVat=%s -> expected_closing=%s, closing=%s",
		b.Opening.StringFixed(2), b.TotalCredit.StringFixed(2), b.TotalDebit.StringFixed(2),
		b.TotalFee.StringFixed(2), b.TotalVat.StringFixed(2), b.Expected.StringFixed(2), b.Closing.StringFixed(2))
}

// Eligible reports whether a transaction counts towards the balance sums: it
// has a parseable date, a narrative and at least one non-zero amount.
func Eligible(tx common.Transaction) bool {
	if _, ok := common.ParseDate(tx.TransactionDate, common.CanonicalDateLayout); !ok || blank(tx.Narrative) {
		return false
	}
	for _, v := range []string{tx.Credit, tx.Debit, tx.TransactionFee, tx.TransactionVat} {
		if !common.AmountOrZero(v).IsZero() {
			return true
		}
	}
	return false
}

// CheckBalance sums the absolute movements of eligible transactions and
// compares the expected closing balance with the stated one. The check is
// skipped, returning a nil error, when no transaction is eligible.
func CheckBalance(stmt common.Statement, tolerance decimal.Decimal) (Balance, error) {
	b := Balance{
		Opening: common.AmountOrZero(stmt.OpeningBalance),
		Closing: common.AmountOrZero(stmt.ClosingBalance),
	}
	for _, tx := range stmt.Details {
		if !Eligible(tx) {
			continue
		}
		b.Eligible++
		b.TotalCredit = b.TotalCredit.Add(common.AmountOrZero(tx.Credit).Abs())
		b.TotalDebit = b.TotalDebit.Add(common.AmountOrZero(tx.Debit).Abs())
		b.TotalFee = b.TotalFee.Add(common.AmountOrZero(tx.TransactionFee).Abs())
		b.TotalVat = b.TotalVat.Add(common.AmountOrZero(tx.TransactionVat).Abs())
	}
	b.Expected = b.Opening.Add(b.TotalCredit).Sub(b.TotalDebit).Sub(b.TotalFee).Sub(b.TotalVat)

	if b.Eligible == 0 {
		return b, nil
	}
	if b.Expected.Sub(b.Closing).Abs().GreaterThan(tolerance) {
		return b, &BalanceError{Balance: b}
	}
	return b, nil
}
