package fields

import (
	"fmt"
	"sort"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/sheet"
	"github.com/schollz/closestmatch"
)

// Problem is a configuration mistake found by Lint.
type Problem struct {
	BankCode string
	Message  string
}

func (p Problem) String() string {
	return fmt.Sprintf("[%s] %s", p.BankCode, p.Message)
}

var fieldMatcher = closestmatch.New(common.FieldNames(), []int{2, 3})

// Suggest returns the known field identity closest to name.
func Suggest(name string) string {
	return fieldMatcher.Closest(name)
}

// Lint checks bank and mapping configuration for mistakes that otherwise
// only show up as silently missing data.
func Lint(banks []common.BankIdentityConfig, mappings []common.FieldMappingConfig) []Problem {
	var problems []Problem

	for _, b := range banks {
		if len(b.Keywords) == 0 {
			problems = append(problems, Problem{b.BankCode, "bank has no detection keywords"})
		}
		for _, sr := range b.ScanRanges {
			if _, ok := sheet.ParseRange(sr.Range); !ok {
				problems = append(problems, Problem{b.BankCode, fmt.Sprintf("scan range %q has malformed range %q", sr.Name, sr.Range)})
			}
		}
	}

	byBank := make(map[string][]common.FieldMappingConfig)
	var codes []string
	for _, m := range mappings {
		if _, ok := byBank[m.BankCode]; !ok {
			codes = append(codes, m.BankCode)
		}
		byBank[m.BankCode] = append(byBank[m.BankCode], m)
	}
	sort.Strings(codes)

	for _, code := range codes {
		problems = append(problems, lintBank(code, byBank[code])...)
	}
	return problems
}

func lintBank(code string, mappings []common.FieldMappingConfig) []Problem {
	var problems []Problem
	seen := make(map[common.Field]int)
	var details []Lookup

	for _, m := range mappings {
		l, err := LookupFor(m)
		if err != nil {
			msg := fmt.Sprintf("unknown field identity %q", m.IdentifyInfo)
			if s := Suggest(m.IdentifyInfo); s != "" {
				msg += fmt.Sprintf(", did you mean %q?", s)
			}
			problems = append(problems, Problem{code, msg})
			continue
		}
		seen[l.Field]++
		if len(l.Keywords) == 0 && l.Field.IsHeader() {
			problems = append(problems, Problem{code, fmt.Sprintf("header field %s has no keywords", l.Field)})
		}
		if l.KeywordColumn == "" && l.ValueColumn == "" && l.Field.IsDetail() {
			problems = append(problems, Problem{code, fmt.Sprintf("detail field %s has no column", l.Field)})
		}
		if l.RowStart > 0 && l.RowEnd > 0 && l.RowStart > l.RowEnd {
			problems = append(problems, Problem{code, fmt.Sprintf("field %s has row_start %d after row_end %d", l.Field, l.RowStart, l.RowEnd)})
		}
		if l.Field.IsDetail() {
			details = append(details, l)
		}
	}

	for _, f := range append(common.HeaderFields(), common.DetailFields()...) {
		if seen[f] > 1 {
			problems = append(problems, Problem{code, fmt.Sprintf("field %s is mapped %d times", f, seen[f])})
		}
	}
	for _, f := range []common.Field{common.Currency, common.OpeningBalance, common.ClosingBalance, common.TransactionDate, common.Narrative} {
		if seen[f] == 0 {
			problems = append(problems, Problem{code, fmt.Sprintf("required field %s is not mapped", f)})
		}
	}

	sort.SliceStable(details, func(i, j int) bool { return details[i].Field < details[j].Field })
	if start, end, ok := DetailWindow(details); !ok {
		problems = append(problems, Problem{code, fmt.Sprintf("detail mappings use different row windows, rows %d-%d of %s apply", start, end, details[0].Field)})
	}
	return problems
}
