package fields

import (
	"regexp"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor/common"
)

var (
	digitRunRegex     = regexp.MustCompile(`\b\d{4,20}\b`)
	nonDigitRegex     = regexp.MustCompile(`\D`)
	currencyCodeRegex = regexp.MustCompile(`\b[A-Za-z]{3}\b`)
	numberTokenRegex  = regexp.MustCompile(`-?\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|-?\d+(?:[.,]\d+)?`)
)

var currencyWhitelist = map[string]bool{
	"VND": true, "USD": true, "EUR": true, "GBP": true, "CAD": true, "CNY": true, "AUD": true, "MYR": true,
	"IDR": true, "THB": true, "JPY": true, "KRW": true, "SGD": true, "HKD": true, "TWD": true, "PHP": true,
	"INR": true, "CHF": true, "NZD": true, "SEK": true, "NOK": true, "DKK": true, "PLN": true, "RUB": true,
	"BRL": true, "MXN": true, "ZAR": true, "TRY": true, "AED": true, "SAR": true, "QAR": true, "KWD": true,
}

// IsCurrency reports whether code is an accepted ISO currency code.
func IsCurrency(code string) bool {
	return currencyWhitelist[strings.ToUpper(strings.TrimSpace(code))]
}

// Smart isolates the structured part of a raw header cell such as
// "Account No: 0011001234567" or "Currency: VND".
func Smart(f common.Field, raw, keyword string) (string, bool) {
	switch f {
	case common.AccountNo:
		return smartAccount(raw, keyword)
	case common.Currency:
		return smartCurrency(raw)
	case common.OpeningBalance, common.ClosingBalance:
		return smartBalance(raw, keyword)
	}
	return raw, true
}

func smartAccount(raw, keyword string) (string, bool) {
	if m := digitRunRegex.FindString(common.TextAfter(raw, keyword)); m != "" {
		return m, true
	}
	if m := digitRunRegex.FindString(raw); m != "" {
		return m, true
	}
	digits := nonDigitRegex.ReplaceAllString(raw, "")
	if len(digits) >= 4 && len(digits) <= 20 {
		return digits, true
	}
	return "", false
}

func smartCurrency(raw string) (string, bool) {
	for _, tok := range currencyCodeRegex.FindAllString(raw, -1) {
		if code := strings.ToUpper(tok); currencyWhitelist[code] {
			return code, true
		}
	}
	return "", false
}

func smartBalance(raw, keyword string) (string, bool) {
	tok := numberTokenRegex.FindString(common.TextAfter(raw, keyword))
	if tok == "" {
		return "", false
	}
	amount, err := common.CleanDecimal(tok)
	if err != nil {
		return "", false
	}
	return amount.String(), true
}
