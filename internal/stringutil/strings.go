// Package stringutil provides text helpers for matching Vietnamese queries
// against spreadsheet data.
package stringutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// KeywordSeparator splits keyword cells in the feeds.
const KeywordSeparator = ";"

// Fold lower-cases s, strips Vietnamese diacritics (đ becomes d) and
// collapses runs of whitespace, so that "Đăng ký  HỘ kinh doanh" and
// "dang ky ho kinh doanh" compare equal.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			switch r {
			case 'đ', 'Đ':
				return 'd'
			}
			return unicode.ToLower(r)
		}),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// ContainsFold reports whether needle occurs in haystack after folding both.
// An empty needle never matches.
func ContainsFold(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// SplitKeywords splits a semicolon-delimited keyword cell, trimming each
// phrase and dropping empty ones.
func SplitKeywords(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(cell, KeywordSeparator) {
		if kw := strings.TrimSpace(part); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Truncate shortens s to at most maxRunes runes, appending "…" when cut.
// Used to keep questions in log lines bounded.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxRunes]) + "…"
}

// IsBlank reports whether s contains only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
