package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind selects the value shape a lookup expects.
type Kind int

const (
	// Dimension matches a decimal number with a unit token.
	Dimension Kind = iota
	// Count matches a bare 1-2 digit integer in a plausible range (1-24);
	// used for flute/teeth/edge-count vocabulary.
	Count
	// Compound matches like Dimension but tolerates filler words between a
	// longer compound label (shank/bore style) and its number.
	Compound
)

// Options configures one attribute lookup.
type Options struct {
	MetricOnly bool
	Kind       Kind
}

const (
	// wideWindow bounds the label-to-value distance for proximity search.
	// Rendered pages interleave unrelated text between a code and its
	// value, so the window is generous.
	wideWindow = 300
	// countWindow bounds the narrower search for count-like attributes.
	countWindow = 80

	countMin = 1
	countMax = 24
)

var (
	rowRe  = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellRe = regexp.MustCompile(`(?is)<t[dh][^>]*>(.*?)</t[dh]>`)
	defRe  = regexp.MustCompile(`(?is)<dt[^>]*>(.*?)</dt>\s*<dd[^>]*>(.*?)</dd>`)

	// classPairRe pairs an element whose class hints at a label with the
	// next value-classed element.
	classPairRe = regexp.MustCompile(`(?is)<[a-z][^>]*class="[^"]*(?:label|name|spec|prop|attr)[^"]*"[^>]*>(.{0,120}?)</[a-z]+>.{0,200}?<[a-z][^>]*class="[^"]*val[^"]*"[^>]*>(.{0,120}?)</[a-z]+>`)

	measureAnyRe    = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(mm|in\b|inch(?:es)?\b|")`)
	measureMetricRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(mm)\b`)
	bareIntRe       = regexp.MustCompile(`\b(\d{1,2})\b`)
)

// Find applies the heuristic pipeline in order and returns the first raw
// match meeting minimal confidence, or ("", false) when every heuristic
// fails. The returned value is raw matched text; unit interpretation
// belongs to the normalizer.
func Find(doc *Document, aliases []string, opts Options) (string, bool) {
	type heuristic func(*Document, string, Options) (string, bool)

	pipeline := []heuristic{
		fromTableRows,
		fromTwoColumnRows,
		fromDefinitionList,
		fromClassPairs,
		fromAdjacentText,
		fromProximityText,
	}
	switch opts.Kind {
	case Count:
		pipeline = append(pipeline, fromCountWindow)
	case Compound:
		pipeline = append(pipeline, fromCompoundLabel)
	}

	for _, alias := range aliases {
		for _, h := range pipeline {
			if v, ok := h(doc, alias, opts); ok {
				return v, true
			}
		}
	}
	return "", false
}

// fromTableRows scans structured table rows: one cell contains the alias,
// a different cell in the same row matches the value pattern.
func fromTableRows(doc *Document, alias string, opts Options) (string, bool) {
	for _, row := range rowRe.FindAllStringSubmatch(doc.html, -1) {
		cells := cellRe.FindAllStringSubmatch(row[1], -1)
		if len(cells) < 2 {
			continue
		}
		labelIdx := -1
		for i, c := range cells {
			if containsFold(stripHTML(c[1]), alias) {
				labelIdx = i
				break
			}
		}
		if labelIdx < 0 {
			continue
		}
		for i, c := range cells {
			if i == labelIdx {
				continue
			}
			if v, ok := matchValue(stripHTML(c[1]), opts); ok {
				return v, true
			}
		}
	}
	return "", false
}

// fromTwoColumnRows handles the simple label-first layout: alias in the
// first cell, value in the first subsequent matching cell.
func fromTwoColumnRows(doc *Document, alias string, opts Options) (string, bool) {
	for _, row := range rowRe.FindAllStringSubmatch(doc.html, -1) {
		cells := cellRe.FindAllStringSubmatch(row[1], -1)
		if len(cells) < 2 {
			continue
		}
		if !containsFold(stripHTML(cells[0][1]), alias) {
			continue
		}
		for _, c := range cells[1:] {
			if v, ok := matchValue(stripHTML(c[1]), opts); ok {
				return v, true
			}
		}
	}
	return "", false
}

func fromDefinitionList(doc *Document, alias string, opts Options) (string, bool) {
	for _, pair := range defRe.FindAllStringSubmatch(doc.html, -1) {
		if !containsFold(stripHTML(pair[1]), alias) {
			continue
		}
		if v, ok := matchValue(stripHTML(pair[2]), opts); ok {
			return v, true
		}
	}
	return "", false
}

func fromClassPairs(doc *Document, alias string, opts Options) (string, bool) {
	for _, pair := range classPairRe.FindAllStringSubmatch(doc.html, -1) {
		if !containsFold(stripHTML(pair[1]), alias) {
			continue
		}
		if v, ok := matchValue(stripHTML(pair[2]), opts); ok {
			return v, true
		}
	}
	return "", false
}

// fromAdjacentText matches the alias immediately followed by a value in
// the visible text.
func fromAdjacentText(doc *Document, alias string, opts Options) (string, bool) {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(alias) + `\s*[:=]?\s*(.{0,40})`)
	for _, m := range re.FindAllStringSubmatch(doc.text, -1) {
		tail := m[1]
		if v, ok := matchLeadingValue(tail, opts); ok {
			return v, true
		}
	}
	return "", false
}

// fromProximityText allows up to wideWindow characters between the alias
// and the first subsequent value occurrence.
func fromProximityText(doc *Document, alias string, opts Options) (string, bool) {
	re := regexp.MustCompile(`(?is)` + regexp.QuoteMeta(alias) + `(.{0,` + strconv.Itoa(wideWindow) + `}?)` + valuePattern(opts))
	m := re.FindStringSubmatch(doc.text)
	if m == nil {
		return "", false
	}
	// Value groups follow the window group.
	return assembleValue(m[2:], opts)
}

// fromCountWindow runs the narrower integer search for count-like
// attributes, bounded to a plausible flute/edge range.
func fromCountWindow(doc *Document, alias string, _ Options) (string, bool) {
	re := regexp.MustCompile(`(?is)` + regexp.QuoteMeta(alias) + `.{0,` + strconv.Itoa(countWindow) + `}?\b(\d{1,2})\b`)
	m := re.FindStringSubmatch(doc.text)
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < countMin || n > countMax {
		return "", false
	}
	return m[1], true
}

// fromCompoundLabel tolerates a few filler words between a compound label
// (e.g. "shank diameter") and its number.
func fromCompoundLabel(doc *Document, alias string, opts Options) (string, bool) {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(alias) + `(?:[\s:=-]+\w+){0,4}?[\s:=-]+(\d+(?:[.,]\d+)?)\s*(mm|in\b|inch(?:es)?\b|")?`)
	m := re.FindStringSubmatch(doc.text)
	if m == nil {
		return "", false
	}
	if opts.MetricOnly && m[2] != "" && !strings.EqualFold(m[2], "mm") {
		return "", false
	}
	return assembleValue(m[1:], opts)
}

func valuePattern(opts Options) string {
	if opts.Kind == Count {
		return `\b(\d{1,2})\b()`
	}
	if opts.MetricOnly {
		return `(\d+(?:[.,]\d+)?)\s*(mm)\b`
	}
	return `(\d+(?:[.,]\d+)?)\s*(mm|in\b|inch(?:es)?\b|")`
}

// matchValue applies the value pattern for opts to a whole cell text.
func matchValue(text string, opts Options) (string, bool) {
	text = strings.TrimSpace(text)
	if opts.Kind == Count {
		if m := regexp.MustCompile(`^\s*(\d{1,2})\s*$`).FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= countMin && n <= countMax {
				return m[1], true
			}
		}
		return "", false
	}
	re := measureAnyRe
	if opts.MetricOnly {
		re = measureMetricRe
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return assembleValue(m[1:], opts)
}

// matchLeadingValue is matchValue anchored to the start of the text.
func matchLeadingValue(text string, opts Options) (string, bool) {
	text = strings.TrimSpace(text)
	if opts.Kind == Count {
		m := regexp.MustCompile(`^(\d{1,2})\b`).FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n >= countMin && n <= countMax {
			return m[1], true
		}
		return "", false
	}
	pat := `^(\d+(?:[.,]\d+)?)\s*(mm|in\b|inch(?:es)?\b|")`
	if opts.MetricOnly {
		pat = `^(\d+(?:[.,]\d+)?)\s*(mm)\b`
	}
	m := regexp.MustCompile(`(?i)` + pat).FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return assembleValue(m[1:], opts)
}

// assembleValue joins a matched number and unit group into a raw value,
// canonicalizing the decimal separator. groups[0] is the number, groups[1]
// (optional) the unit.
func assembleValue(groups []string, opts Options) (string, bool) {
	if len(groups) == 0 || groups[0] == "" {
		return "", false
	}
	num := strings.ReplaceAll(groups[0], ",", ".")
	if f, err := strconv.ParseFloat(num, 64); err != nil || f <= 0 {
		return "", false
	}
	if opts.Kind == Count {
		n, err := strconv.Atoi(num)
		if err != nil || n < countMin || n > countMax {
			return "", false
		}
		return num, true
	}
	if len(groups) > 1 && groups[1] != "" {
		unit := strings.ToLower(strings.TrimSpace(groups[1]))
		return num + " " + unit, true
	}
	return num, true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
