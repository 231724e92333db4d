// Package detect identifies the bank that produced a statement by scanning
// configured cell ranges for bank keywords.
package detect

import (
	"sort"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/sheet"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Match is a successful detection.
type Match struct {
	Config  common.BankIdentityConfig
	Keyword string
	// Range is the scan range whose text contained Keyword.
	Range common.ScanRange
	// Others lists bank codes whose keywords also matched the winning range.
	Others []string
	// Data is the matched bank's own scan ranges, read for the next stage.
	Data []sheet.RangeText
}

// Detect scans every distinct scan range of the active configs, in order, and
// returns the first (range, config) pair whose keyword occurs in the range
// text. Ranges are tried before configs, so the range order decides between
// banks that share a keyword.
func Detect(wb *sheet.Workbook, configs []common.BankIdentityConfig) (Match, bool) {
	active := activeConfigs(configs)

	for _, sr := range candidateRanges(active) {
		rt, err := sheet.ReadRange(wb, sr)
		if err != nil {
			log.WithError(err).WithField("range", sr.Range).Debug("Skipping scan range")
			continue
		}
		if strings.TrimSpace(rt.Text) == "" {
			continue
		}

		var match *Match
		for _, cfg := range active {
			kw, ok := common.MatchKeyword(rt.Text, cfg.Keywords)
			if !ok {
				continue
			}
			if match == nil {
				match = &Match{Config: cfg, Keyword: kw, Range: sr}
				continue
			}
			if cfg.BankCode != match.Config.BankCode {
				match.Others = append(match.Others, cfg.BankCode)
			}
		}
		if match == nil {
			continue
		}

		if len(match.Others) > 0 {
			log.WithFields(logrus.Fields{
				"bank_code": match.Config.BankCode,
				"others":    match.Others,
				"range":     sr.Range,
			}).Warn("Several banks match the same scan range, first configured bank wins")
		}
		match.Data = sheet.ReadRanges(wb, match.Config.ScanRanges)
		log.WithFields(logrus.Fields{
			"bank_code": match.Config.BankCode,
			"keyword":   match.Keyword,
			"range":     sr.Range,
		}).Debug("Detected bank")
		return *match, true
	}
	return Match{}, false
}

func activeConfigs(configs []common.BankIdentityConfig) []common.BankIdentityConfig {
	out := make([]common.BankIdentityConfig, 0, len(configs))
	for _, c := range configs {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// candidateRanges is the union of every config's scan ranges in collection
// order, with identical (sheet, range) pairs kept once.
func candidateRanges(configs []common.BankIdentityConfig) []common.ScanRange {
	seen := make(map[string]bool)
	var out []common.ScanRange
	for _, c := range configs {
		for _, sr := range c.ScanRanges {
			key := strings.ToLower(strings.TrimSpace(sr.SheetName)) + "!" + strings.ToUpper(strings.TrimSpace(sr.Range))
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, sr)
		}
	}
	return out
}

// Conflict is a keyword configured for more than one active bank.
type Conflict struct {
	Keyword   string
	BankCodes []string
}

// Conflicts lists keywords shared by different active banks. A config whose
// keyword is a substring of another bank's keyword is reported as well, since
// the shorter keyword matches wherever the longer one does.
func Conflicts(configs []common.BankIdentityConfig) []Conflict {
	owners := make(map[string]map[string]bool)
	for _, c := range activeConfigs(configs) {
		for _, kw := range c.Keywords {
			k := common.Fold(strings.TrimSpace(kw))
			if k == "" {
				continue
			}
			if owners[k] == nil {
				owners[k] = make(map[string]bool)
			}
			owners[k][c.BankCode] = true
		}
	}

	keys := make([]string, 0, len(owners))
	for k := range owners {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Conflict
	for _, k := range keys {
		banks := make(map[string]bool)
		for b := range owners[k] {
			banks[b] = true
		}
		for _, other := range keys {
			if other != k && strings.Contains(other, k) {
				for b := range owners[other] {
					banks[b] = true
				}
			}
		}
		if len(banks) < 2 {
			continue
		}
		codes := make([]string, 0, len(banks))
		for b := range banks {
			codes = append(codes, b)
		}
		sort.Strings(codes)
		out = append(out, Conflict{Keyword: k, BankCodes: codes})
	}
	return out
}
