// Package extract locates labeled attribute values inside supplier product
// pages. No single structural assumption holds across suppliers or over
// time, so extraction is an ordered pipeline of heuristics, each
// independently testable against captured markup.
package extract

import (
	"regexp"
	"strings"
)

// Document wraps one fetched page: the raw markup plus its derived visible
// text. Rendered pages may be constructed from visible text alone.
type Document struct {
	html string
	text string
}

// NewDocument parses raw HTML markup.
func NewDocument(html string) *Document {
	return &Document{
		html: html,
		text: stripHTML(html),
	}
}

// FromText wraps already-rendered visible text (no markup available).
func FromText(text string) *Document {
	return &Document{text: collapseWhitespace(text)}
}

// Text returns the document's visible text.
func (d *Document) Text() string { return d.text }

// HTML returns the raw markup ("" for text-only documents).
func (d *Document) HTML() string { return d.html }

// Title extracts the <title> of the document, if any.
func (d *Document) Title() string {
	m := titleRe.FindStringSubmatch(d.html)
	if len(m) > 1 {
		return strings.TrimSpace(stripHTML(m[1]))
	}
	return ""
}

var (
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe = regexp.MustCompile(`[ \t]+`)
	nlRe    = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes script/style/nav/footer blocks, strips tags, decodes
// common entities and collapses whitespace.
func stripHTML(html string) string {
	for _, tag := range []string{"script", "style", "nav", "footer"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	return collapseWhitespace(html)
}

func collapseWhitespace(s string) string {
	s = spaceRe.ReplaceAllString(s, " ")
	s = nlRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
