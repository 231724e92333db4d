package common

import (
	"fmt"
	"strings"
)

// Field is a statement field a mapping row can target.
type Field int

const (
	FieldUnknown Field = iota
	AccountNo
	Currency
	OpeningBalance
	ClosingBalance
	TransactionDate
	Narrative
	Debit
	Credit
	FlowCode
	TransactionFee
	TransactionVat
	ReferenceNumber
)

var fieldNames = [...]string{
	FieldUnknown:    "",
	AccountNo:       "accountno",
	Currency:        "currency",
	OpeningBalance:  "openingbalance",
	ClosingBalance:  "closingbalance",
	TransactionDate: "transactiondate",
	Narrative:       "narrative",
	Debit:           "debit",
	Credit:          "credit",
	FlowCode:        "flowcode",
	TransactionFee:  "transactionfee",
	TransactionVat:  "transactionvat",
	ReferenceNumber: "reference_number",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// IsHeader reports whether f is a single-value statement field.
func (f Field) IsHeader() bool {
	return f >= AccountNo && f <= ClosingBalance
}

// IsDetail reports whether f is a per-transaction field.
func (f Field) IsDetail() bool {
	return f >= TransactionDate && f <= ReferenceNumber
}

// ParseField maps an identify_info value to its Field.
func ParseField(name string) (Field, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i := AccountNo; i <= ReferenceNumber; i++ {
		if fieldNames[i] == n {
			return i, nil
		}
	}
	return FieldUnknown, fmt.Errorf("unknown field identity %q", name)
}

// FieldNames lists every known identify_info value in canonical order.
func FieldNames() []string {
	names := make([]string, 0, len(fieldNames)-1)
	for i := AccountNo; i <= ReferenceNumber; i++ {
		names = append(names, fieldNames[i])
	}
	return names
}

func HeaderFields() []Field {
	return []Field{AccountNo, Currency, OpeningBalance, ClosingBalance}
}

func DetailFields() []Field {
	return []Field{TransactionDate, Narrative, Debit, Credit, FlowCode, TransactionFee, TransactionVat, ReferenceNumber}
}
