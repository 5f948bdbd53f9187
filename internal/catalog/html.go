package catalog

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagPattern   = regexp.MustCompile(`<(?:[a-zA-Z][a-zA-Z0-9]*|/[a-zA-Z][a-zA-Z0-9]*)\b[^>]*>`)
	blankLinePattern = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText returns s unchanged unless it contains markup, in which case
// the visible text is extracted with line breaks kept at <br> and block
// element boundaries. Rich-text cells exported from a sheet or pasted from
// a web page end up in the feed this way.
func HTMLToText(s string) string {
	if !htmlTagPattern.MatchString(s) {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		sel.PrependHtml("- ")
	})

	lines := strings.Split(doc.Text(), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text := blankLinePattern.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}
