package common

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s in NFC form so that precomposed and combining
// Vietnamese diacritics compare equal.
func Fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// MatchKeyword returns the first non-blank keyword contained in text,
// comparing case-insensitively.
func MatchKeyword(text string, keywords []string) (string, bool) {
	folded := Fold(text)
	for _, kw := range keywords {
		k := Fold(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(folded, k) {
			return kw, true
		}
	}
	return "", false
}

// TextAfter returns the part of text following the first case-insensitive
// occurrence of keyword, folded. When keyword is absent the whole folded text
// is returned.
func TextAfter(text, keyword string) string {
	folded := Fold(text)
	k := Fold(strings.TrimSpace(keyword))
	if k == "" {
		return folded
	}
	if i := strings.Index(folded, k); i >= 0 {
		return folded[i+len(k):]
	}
	return folded
}
