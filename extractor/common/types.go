package common

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoMappings        = errors.New("no field mappings configured")
)

// Status is the terminal state of a statement or bank log row.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusInvalid Status = "INVALID"
	StatusFailed  Status = "FAILED"
	StatusUnknown Status = "UNKNOWN"
)

// ScanRange is a named rectangular region probed for bank keywords.
// An empty SheetName means the first sheet.
type ScanRange struct {
	Name      string `json:"name" mapstructure:"name"`
	Range     string `json:"range" mapstructure:"range"`
	SheetName string `json:"sheet_name,omitempty" mapstructure:"sheet_name"`
}

type BankIdentityConfig struct {
	CompanyID  int64       `json:"company_id"`
	BankCode   string      `json:"bank_code"`
	BankName   string      `json:"bank_name"`
	Keywords   []string    `json:"keywords"`
	ScanRanges []ScanRange `json:"scan_ranges"`
	IsActive   bool        `json:"is_active"`
}

// FieldMappingConfig tells the extractor where one statement field lives.
// RowStart and RowEnd are 1-based spreadsheet rows; zero leaves that end open.
type FieldMappingConfig struct {
	CompanyID    int64    `json:"company_id"`
	BankCode     string   `json:"bank_code"`
	IdentifyInfo string   `json:"identify_info"`
	Keywords     []string `json:"keywords"`
	ColKeyword   string   `json:"col_keyword"`
	ColValue     string   `json:"col_value"`
	RowStart     int      `json:"row_start"`
	RowEnd       int      `json:"row_end"`
	CellFormat   string   `json:"cell_format,omitempty"`
}

// Field resolves IdentifyInfo to a known field identity.
func (c FieldMappingConfig) Field() (Field, error) {
	return ParseField(c.IdentifyInfo)
}

// Transaction is one accepted statement row. Empty strings mean the field was absent.
// TransactionDate is always canonical DDMMYYYY once assembled.
type Transaction struct {
	TransactionDate string `json:"transactiondate,omitempty"`
	Narrative       string `json:"narrative,omitempty"`
	Debit           string `json:"debit,omitempty"`
	Credit          string `json:"credit,omitempty"`
	FlowCode        string `json:"flowcode,omitempty"`
	TransactionFee  string `json:"transactionfee,omitempty"`
	TransactionVat  string `json:"transactionvat,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	TransactionType string `json:"transactiontype,omitempty"`
}

// Get returns the value stored for a detail field.
func (t Transaction) Get(f Field) string {
	switch f {
	case TransactionDate:
		return t.TransactionDate
	case Narrative:
		return t.Narrative
	case Debit:
		return t.Debit
	case Credit:
		return t.Credit
	case FlowCode:
		return t.FlowCode
	case TransactionFee:
		return t.TransactionFee
	case TransactionVat:
		return t.TransactionVat
	case ReferenceNumber:
		return t.ReferenceNumber
	}
	return ""
}

// Set stores v for a detail field. Header fields are ignored.
func (t *Transaction) Set(f Field, v string) {
	switch f {
	case TransactionDate:
		t.TransactionDate = v
	case Narrative:
		t.Narrative = v
	case Debit:
		t.Debit = v
	case Credit:
		t.Credit = v
	case FlowCode:
		t.FlowCode = v
	case TransactionFee:
		t.TransactionFee = v
	case TransactionVat:
		t.TransactionVat = v
	case ReferenceNumber:
		t.ReferenceNumber = v
	}
}

// Date parses the canonical transaction date.
func (t Transaction) Date() (time.Time, bool) {
	d, err := time.Parse(CanonicalDateLayout, t.TransactionDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// UnmarshalJSON accepts the alternate key names older statement logs were stored with.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	var aux struct {
		plain
		TrxType       string `json:"trx_type"`
		BankReference string `json:"bank_reference"`
		Reference     string `json:"reference"`
		Ref           string `json:"ref"`
		BankRef       string `json:"bankref"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Transaction(aux.plain)
	if t.TransactionType == "" {
		t.TransactionType = aux.TrxType
	}
	if t.ReferenceNumber == "" {
		for _, alt := range []string{aux.BankReference, aux.Reference, aux.Ref, aux.BankRef} {
			if alt != "" {
				t.ReferenceNumber = alt
				break
			}
		}
	}
	return nil
}

// Header holds the single-value statement fields.
type Header struct {
	AccountNo      string `json:"accountno,omitempty"`
	Currency       string `json:"currency,omitempty"`
	OpeningBalance string `json:"openingbalance,omitempty"`
	ClosingBalance string `json:"closingbalance,omitempty"`
}

func (h Header) Get(f Field) string {
	switch f {
	case AccountNo:
		return h.AccountNo
	case Currency:
		return h.Currency
	case OpeningBalance:
		return h.OpeningBalance
	case ClosingBalance:
		return h.ClosingBalance
	}
	return ""
}

func (h *Header) Set(f Field, v string) {
	switch f {
	case AccountNo:
		h.AccountNo = v
	case Currency:
		h.Currency = v
	case OpeningBalance:
		h.OpeningBalance = v
	case ClosingBalance:
		h.ClosingBalance = v
	}
}

// Statement is the persisted parse result (a statement log row).
type Statement struct {
	ID               string        `json:"id"`
	CompanyID        int64         `json:"company_id"`
	UserID           int64         `json:"user_id"`
	BankCode         string        `json:"bank_code"`
	Filename         string        `json:"filename"`
	OriginalFilename string        `json:"original_filename"`
	Status           Status        `json:"status"`
	Message          string        `json:"message"`
	AccountNo        string        `json:"accountno,omitempty"`
	Currency         string        `json:"currency,omitempty"`
	OpeningBalance   string        `json:"opening_balance,omitempty"`
	ClosingBalance   string        `json:"closing_balance,omitempty"`
	Details          []Transaction `json:"details"`
	MT940Filename    string        `json:"mt940_filename,omitempty"`
	ProcessedAt      time.Time     `json:"processed_at"`
}

// ApplyHeader copies extracted header values onto the statement.
func (s *Statement) ApplyHeader(h Header) {
	s.AccountNo = h.AccountNo
	s.Currency = h.Currency
	s.OpeningBalance = h.OpeningBalance
	s.ClosingBalance = h.ClosingBalance
}

// BankLog records one bank detection attempt.
type BankLog struct {
	ID               string    `json:"id"`
	CompanyID        int64     `json:"company_id"`
	UserID           int64     `json:"user_id"`
	BankCode         string    `json:"bank_code,omitempty"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	Status           Status    `json:"status"`
	Message          string    `json:"message"`
	DetectedKeywords []string  `json:"detected_keywords,omitempty"`
	ProcessedAt      time.Time `json:"processed_at"`
}
