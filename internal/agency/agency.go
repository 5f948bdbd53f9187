// Package agency rewrites the agency labels typed into the procedure sheet
// into the names used in answers. Local government has two tiers (commune
// and province) plus central ministries; there is no district tier, so a
// normalized label never names one.
package agency

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	communePattern  = regexp.MustCompile(`cấp\s*xã|ubnd\s*xã`)
	provincePattern = regexp.MustCompile(`cấp\s*tỉnh`)
	departmentStart = regexp.MustCompile(`^sở\s`)
)

// districtTerms are whole words that denote the abolished district tier.
var districtTerms = map[string]bool{
	"huyện": true,
	"quận":  true,
}

// Normalizer maps raw agency labels to canonical names for one office.
type Normalizer struct {
	Commune  string // e.g. "Xã Xuân Lũng"
	Province string // e.g. "Phú Thọ"
}

// CommuneLabel is the canonical commune-tier agency.
func (n Normalizer) CommuneLabel() string {
	return "UBND " + n.Commune
}

// ProvinceLabel is the canonical province-tier agency.
func (n Normalizer) ProvinceLabel() string {
	return "UBND tỉnh " + n.Province
}

// Normalize is pure and total. Rules, first match wins:
//
//  1. "xã", "xa", "commune" or a "cấp xã" / "ubnd xã" phrase -> CommuneLabel
//  2. "tỉnh", "tinh", "province" or a "cấp tỉnh" phrase -> ProvinceLabel
//  3. a "Sở ..." department that names neither "tỉnh" nor the province
//     -> the label followed by the province name
//  4. a label that already names the province -> unchanged
//  5. anything else -> trimmed label
//
// Any result naming a district-tier body is replaced by CommuneLabel, the
// tier that took over district responsibilities.
func (n Normalizer) Normalize(raw string) string {
	txt := strings.TrimSpace(norm.NFC.String(raw))
	if txt == "" {
		return ""
	}
	return n.withoutDistrict(n.apply(txt))
}

func (n Normalizer) apply(txt string) string {
	lower := strings.ToLower(txt)

	switch {
	case lower == "xã" || lower == "xa" || lower == "commune" || communePattern.MatchString(lower):
		return n.CommuneLabel()
	case lower == "tỉnh" || lower == "tinh" || lower == "province" || provincePattern.MatchString(lower):
		return n.ProvinceLabel()
	}

	mentionsProvince := n.Province != "" && strings.Contains(lower, strings.ToLower(n.Province))
	if departmentStart.MatchString(lower) && !strings.Contains(lower, "tỉnh") && !mentionsProvince {
		return txt + " " + n.Province
	}
	return txt
}

func (n Normalizer) withoutDistrict(label string) string {
	if MentionsDistrict(label) {
		return n.CommuneLabel()
	}
	return label
}

// MentionsDistrict reports whether s contains a district-tier word.
// Matching is on whole words, so "chuyện" does not count as "huyện".
func MentionsDistrict(s string) bool {
	words := strings.FieldsFunc(strings.ToLower(norm.NFC.String(s)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	})
	for _, w := range words {
		if districtTerms[w] {
			return true
		}
	}
	return false
}
