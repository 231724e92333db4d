package common

import (
	"encoding/json"
	"testing"
)

func TestParseField_KnownNames(t *testing.T) {
	for _, name := range FieldNames() {
		f, err := ParseField(name)
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", name, err)
		}
		if f.String() != name {
			t.Errorf("Expected %q, got %q", name, f.String())
		}
	}
}

func TestParseField_TrimsAndLowercases(t *testing.T) {
	f, err := ParseField("  OpeningBalance ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if f != OpeningBalance {
		t.Errorf("Expected OpeningBalance, got %v", f)
	}
}

func TestParseField_Unknown(t *testing.T) {
	f, err := ParseField("transactoindate")
	if err == nil {
		t.Fatal("Expected error for misspelled field")
	}
	if f != FieldUnknown {
		t.Errorf("Expected FieldUnknown, got %v", f)
	}
}

func TestField_HeaderDetailSplit(t *testing.T) {
	for _, f := range HeaderFields() {
		if !f.IsHeader() || f.IsDetail() {
			t.Errorf("%v should be a header field", f)
		}
	}
	for _, f := range DetailFields() {
		if f.IsHeader() || !f.IsDetail() {
			t.Errorf("%v should be a detail field", f)
		}
	}
}

func TestTransaction_SetGet(t *testing.T) {
	var tx Transaction
	for _, f := range DetailFields() {
		tx.Set(f, f.String()+"-value")
	}
	for _, f := range DetailFields() {
		if got := tx.Get(f); got != f.String()+"-value" {
			t.Errorf("Field %v: expected %q, got %q", f, f.String()+"-value", got)
		}
	}
}

func TestTransaction_UnmarshalAliases(t *testing.T) {
	var tx Transaction
	data := `{"transactiondate":"01112023","narrative":"Salary","credit":"500000","trx_type":"nmsc","bankref":"FT123"}`
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tx.TransactionType != "nmsc" {
		t.Errorf("Expected type from trx_type, got %q", tx.TransactionType)
	}
	if tx.ReferenceNumber != "FT123" {
		t.Errorf("Expected reference from bankref, got %q", tx.ReferenceNumber)
	}
	if tx.Credit != "500000" {
		t.Errorf("Expected credit 500000, got %q", tx.Credit)
	}
}

func TestTransaction_UnmarshalPrefersCanonicalReference(t *testing.T) {
	var tx Transaction
	data := `{"reference_number":"A1","reference":"B2"}`
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tx.ReferenceNumber != "A1" {
		t.Errorf("Expected A1, got %q", tx.ReferenceNumber)
	}
}

func TestTransaction_Date(t *testing.T) {
	tx := Transaction{TransactionDate: "02112023"}
	d, ok := tx.Date()
	if !ok {
		t.Fatal("Expected canonical date to parse")
	}
	if d.Day() != 2 || d.Month() != 11 || d.Year() != 2023 {
		t.Errorf("Unexpected date %v", d)
	}
	if _, ok := (Transaction{TransactionDate: "2/11/2023"}).Date(); ok {
		t.Error("Expected non-canonical date to be rejected")
	}
}

func TestMatchKeyword_CaseAndNormalisation(t *testing.T) {
	// text is in decomposed form, the keyword precomposed
	text := "SỐ DƯ ĐẦU KỲ: 1,000,000"
	kw, ok := MatchKeyword(text, []string{"", "số dư đầu kỳ"})
	if !ok {
		t.Fatal("Expected keyword match")
	}
	if kw != "số dư đầu kỳ" {
		t.Errorf("Unexpected keyword %q", kw)
	}
}

func TestTextAfter(t *testing.T) {
	if got := TextAfter("Account No: 1234", "account no"); got != ": 1234" {
		t.Errorf("Unexpected remainder %q", got)
	}
	if got := TextAfter("Balance 10", "missing"); got != "balance 10" {
		t.Errorf("Unexpected remainder %q", got)
	}
}
