// Package mode reads the optional mode tag that the chat widget prefixes to
// a question, e.g. "[CHẾ ĐỘ: THỦ TỤC] đăng ký khai sinh", and decides which
// answer path serves it.
package mode

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Default is the label used when no tag is present.
const Default = "CHUNG"

// Route selects the answer path.
type Route string

// Answer paths.
const (
	RouteProcedure Route = "procedure"
	RouteDocument  Route = "document"
)

// tagPattern matches a tag at the very start of the input.
var tagPattern = regexp.MustCompile(`(?i)^\[(?:CHẾ ĐỘ|MODE)\s*:\s*([^\]]*)\]\s*`)

// procedureMarkers route a label to the procedure path when contained in it.
var procedureMarkers = []string{
	"THỦ TỤC", "BIỂU MẪU", "LIÊN HỆ",
	"PROCEDURE", "FORM", "CONTACT",
}

// Query is a question with its mode label.
type Query struct {
	Label    string // upper-cased tag label, or Default
	Question string // input without the tag, trimmed
}

// Parse extracts the leading tag. Input without a tag, or with an empty
// label, yields Default and the whole trimmed input.
func Parse(raw string) Query {
	raw = norm.NFC.String(raw)

	m := tagPattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return Query{Label: Default, Question: strings.TrimSpace(raw)}
	}

	label := strings.ToUpper(strings.TrimSpace(raw[m[2]:m[3]]))
	if label == "" {
		label = Default
	}
	return Query{
		Label:    label,
		Question: strings.TrimSpace(raw[m[1]:]),
	}
}

// Route classifies the label.
func (q Query) Route() Route {
	return RouteFor(q.Label)
}

// RouteFor classifies a label: procedure, form and contact-staff requests
// take the procedure path; everything else takes the document path.
func RouteFor(label string) Route {
	upper := strings.ToUpper(label)
	for _, marker := range procedureMarkers {
		if strings.Contains(upper, marker) {
			return RouteProcedure
		}
	}
	return RouteDocument
}
