// Package validate checks an extracted statement before anything is persisted
// or encoded.
package validate

import (
	"fmt"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor/common"
)

// Kind classifies a validation issue.
type Kind int

const (
	MissingAccount Kind = iota
	MissingHeader
	NoTransactions
	NoValidTransactions
	MissingAmounts
	MissingNarratives
	MissingDates
)

// Issue is one violated rule. Every issue blocks the statement; the caller
// decides whether a missing account number alone may pass.
type Issue struct {
	Kind    Kind
	Field   common.Field
	Message string
}

type Result struct {
	Issues []Issue
}

func (r Result) Valid() bool {
	return len(r.Issues) == 0
}

// OnlyMissingAccount reports whether the account number is the sole problem.
func (r Result) OnlyMissingAccount() bool {
	if len(r.Issues) == 0 {
		return false
	}
	for _, i := range r.Issues {
		if i.Kind != MissingAccount {
			return false
		}
	}
	return true
}

func (r Result) Errors() []string {
	out := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		out[i] = issue.Message
	}
	return out
}

func (r Result) Error() string {
	return strings.Join(r.Errors(), "; ")
}

// Statement checks required header fields and the transaction list.
func Statement(stmt common.Statement) Result {
	var r Result
	add := func(k Kind, f common.Field, format string, args ...any) {
		r.Issues = append(r.Issues, Issue{Kind: k, Field: f, Message: fmt.Sprintf(format, args...)})
	}

	if blank(stmt.AccountNo) {
		add(MissingAccount, common.AccountNo, "missing account number")
	}
	if blank(stmt.OpeningBalance) {
		add(MissingHeader, common.OpeningBalance, "missing opening balance")
	}
	if blank(stmt.ClosingBalance) {
		add(MissingHeader, common.ClosingBalance, "missing closing balance")
	}
	if blank(stmt.Currency) {
		add(MissingHeader, common.Currency, "missing currency")
	}
	if blank(stmt.BankCode) {
		add(MissingHeader, common.FieldUnknown, "missing bank code")
	}

	if len(stmt.Details) == 0 {
		add(NoTransactions, common.FieldUnknown, "no valid transactions: the statement has no transaction rows")
		return r
	}

	var valid, noAmount, noNarrative, noDate int
	for _, tx := range stmt.Details {
		hasAmount := common.HasAmount(tx.Credit) || common.HasAmount(tx.Debit) ||
			common.HasAmount(tx.TransactionFee) || common.HasAmount(tx.TransactionVat)
		hasNarrative := !blank(tx.Narrative)
		hasDate := !blank(tx.TransactionDate)

		if !hasAmount {
			noAmount++
		}
		if !hasNarrative {
			noNarrative++
		}
		if !hasDate {
			noDate++
		}
		if hasAmount && hasNarrative && hasDate {
			valid++
		}
	}

	if valid == 0 {
		add(NoValidTransactions, common.FieldUnknown, "no valid transactions: each transaction needs a date, a narrative and an amount")
		return r
	}
	if noAmount > 0 {
		add(MissingAmounts, common.FieldUnknown, "%d transaction(s) have no credit, debit, fee or vat amount", noAmount)
	}
	if noNarrative > 0 {
		add(MissingNarratives, common.Narrative, "%d transaction(s) have no narrative", noNarrative)
	}
	if noDate > 0 {
		add(MissingDates, common.TransactionDate, "%d transaction(s) have no transaction date", noDate)
	}
	return r
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
