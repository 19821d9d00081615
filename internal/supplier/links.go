package supplier

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	anchorRe = regexp.MustCompile(`(?is)<a\s[^>]*href="([^"#]+)"[^>]*>(.*?)</a>`)
	tokenRe  = regexp.MustCompile(`[A-Za-z0-9.]+`)
)

// bestProductLink picks the most plausible product link from search-result
// markup by keyword overlap between the record description and each link's
// text and URL. Returns "" when nothing overlaps.
func bestProductLink(html, baseURL, description string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	want := tokenSet(description)
	if len(want) == 0 {
		return ""
	}

	bestScore := 0
	bestLink := ""
	for _, m := range anchorRe.FindAllStringSubmatch(html, -1) {
		href, text := m[1], m[2]
		if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			continue
		}

		score := overlap(want, tokenSet(text))
		score += overlap(want, tokenSet(href))
		if score > bestScore {
			ref, err := url.Parse(href)
			if err != nil {
				continue
			}
			bestScore = score
			bestLink = base.ResolveReference(ref).String()
		}
	}
	return bestLink
}

// tokenSet lowercases and splits into alphanumeric tokens, dropping short
// noise words.
func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, tok := range tokenRe.FindAllString(strings.ToLower(s), -1) {
		if len(tok) >= 3 {
			set[tok] = true
		}
	}
	return set
}

func overlap(a, b map[string]bool) int {
	n := 0
	for tok := range a {
		if b[tok] {
			n++
		}
	}
	return n
}
