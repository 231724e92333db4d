package common

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// CanonicalDateLayout is the DDMMYYYY form transaction dates are stored in.
const CanonicalDateLayout = "02012006"

var ErrNoDigits = errors.New("no digits in amount")

var (
	nonNumericRegex = regexp.MustCompile(`[^0-9.,]`)
	spaceRegex      = regexp.MustCompile(`\s+`)
	serialRegex     = regexp.MustCompile(`^\d{5}(\.\d+)?$`)
)

// CleanDecimal parses a bank-formatted amount into a decimal.Decimal.
// Currency symbols, codes and spaces are dropped; parentheses or a leading or
// trailing minus make the result negative. Dots repeated more than once are
// thousands separators, as are commas unless a comma is the last separator
// followed by one or two digits.
func CleanDecimal(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		negative = true
	}

	cleanText := normalizeSeparators(nonNumericRegex.ReplaceAllString(s, ""))
	if strings.Trim(cleanText, ".") == "" {
		return decimal.Zero, ErrNoDigits
	}
	amount, err := decimal.NewFromString(cleanText)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func normalizeSeparators(s string) string {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas == 1:
		tail := s[strings.Index(s, ",")+1:]
		if len(tail) == 1 || len(tail) == 2 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case dots > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// AmountOrZero is CleanDecimal with every failure collapsed to zero.
func AmountOrZero(text string) decimal.Decimal {
	d, err := CleanDecimal(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// HasAmount reports whether text is non-blank and parses as a number.
func HasAmount(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	_, err := CleanDecimal(text)
	return err == nil
}

var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"02/01/06",
	"2/1/06",
	"02-01-06",
	"02.01.06",
	CanonicalDateLayout,
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02-01-2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02-Jan-2006",
	"02-Jan-06",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	// Month-first, reached only when no day-first reading is valid.
	"01/02/2006",
	"1/2/2006",
}

// ParseDate parses value using the given layouts first, then day-first
// heuristics. Five-digit numbers are read as Excel serial dates.
func ParseDate(value string, layouts ...string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}

	if serialRegex.MatchString(v) {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			if t, err := excelize.ExcelDateToTime(f, false); err == nil {
				return truncateDay(t), true
			}
		}
	}

	all := make([]string, 0, len(layouts)+len(dayFirstLayouts))
	all = append(all, layouts...)
	all = append(all, dayFirstLayouts...)

	candidates := []string{v}
	if fields := strings.Fields(v); len(fields) > 1 {
		candidates = append(candidates, fields[0])
	}

	for _, c := range candidates {
		for _, layout := range all {
			if layout == "" {
				continue
			}
			if t, err := time.Parse(layout, c); err == nil {
				return truncateDay(t), true
			}
		}
	}
	return time.Time{}, false
}

// CanonicalDate normalises value to DDMMYYYY.
func CanonicalDate(value string, layouts ...string) (string, bool) {
	t, ok := ParseDate(value, layouts...)
	if !ok {
		return "", false
	}
	return t.Format(CanonicalDateLayout), true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var strftimeReplacer = strings.NewReplacer(
	"%d", "02",
	"%m", "01",
	"%Y", "2006",
	"%y", "06",
	"%H", "15",
	"%M", "04",
	"%S", "05",
	"%b", "Jan",
	"%B", "January",
)

// StrftimeLayout converts a strftime pattern such as "%d/%m/%Y" to a Go layout.
func StrftimeLayout(format string) string {
	if !strings.Contains(format, "%") {
		return format
	}
	return strftimeReplacer.Replace(format)
}

// CollapseSpaces trims s and folds every whitespace run to one space.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}
