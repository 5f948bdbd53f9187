package catalog

import (
	"strings"

	"github.com/xuanlung-gov/tthc-assistant/internal/stringutil"
)

// Matcher picks at most one record for a question.
// Text comparison ignores case and Vietnamese diacritics.
type Matcher[T any] interface {
	Match(question string, records []T) (T, bool)
}

// ProcedureMatcher returns the first procedure, in feed order, whose name
// or code contains the question, or one of whose keywords is contained in
// the question. Names are matched as a superset of a terse query; keywords
// are trigger phrases that may appear inside a longer one.
type ProcedureMatcher struct{}

// Match implements Matcher.
func (ProcedureMatcher) Match(question string, records []Procedure) (Procedure, bool) {
	q := stringutil.Fold(question)
	if q == "" {
		return Procedure{}, false
	}

	for _, p := range records {
		if strings.Contains(stringutil.Fold(p.Name), q) ||
			strings.Contains(stringutil.Fold(p.Code), q) {
			return p, true
		}
		for _, kw := range p.KeywordList() {
			if k := stringutil.Fold(kw); k != "" && strings.Contains(q, k) {
				return p, true
			}
		}
	}
	return Procedure{}, false
}

// Document scoring weights.
const (
	TitleInQuestionScore   = 3
	KeywordInQuestionScore = 2
	QuestionInTitleScore   = 1
)

// DocumentMatcher scores every document and returns the best one with a
// positive score. Ties keep the earliest document.
type DocumentMatcher struct{}

// Match implements Matcher.
func (DocumentMatcher) Match(question string, records []Document) (Document, bool) {
	q := stringutil.Fold(question)
	if q == "" {
		return Document{}, false
	}

	best, bestScore := -1, 0
	for i, d := range records {
		if s := score(q, d); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return Document{}, false
	}
	return records[best], true
}

// Score returns the match score of one document for a question.
func Score(question string, d Document) int {
	q := stringutil.Fold(question)
	if q == "" {
		return 0
	}
	return score(q, d)
}

// score expects an already folded, non-empty question.
//
//	+3 when the question contains the title
//	+2 for each keyword contained in the question
//	+1 when nothing else matched but the title contains the question
func score(q string, d Document) int {
	title := stringutil.Fold(d.Title)

	s := 0
	if title != "" && strings.Contains(q, title) {
		s += TitleInQuestionScore
	}
	for _, kw := range d.KeywordList() {
		if k := stringutil.Fold(kw); k != "" && strings.Contains(q, k) {
			s += KeywordInQuestionScore
		}
	}
	if s == 0 && strings.Contains(title, q) {
		s = QuestionInTitleScore
	}
	return s
}

var (
	_ Matcher[Procedure] = ProcedureMatcher{}
	_ Matcher[Document]  = DocumentMatcher{}
)
