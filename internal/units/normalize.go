// Package units canonicalizes raw matched attribute text. This is the
// single point where unit ambiguity is resolved; extraction heuristics
// never interpret units themselves.
package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/toolspec-cli/internal/model"
)

// MMPerInch is the fixed inch-to-millimeter conversion factor.
const MMPerInch = 25.4

var (
	metricRe = regexp.MustCompile(`(?i)\bmm\b`)
	inchRe   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:in\b|inch(?:es)?\b|")`)
)

// Normalize converts raw matched text into a canonical value string.
// Empty input yields the Sentinel. A value carrying an inch token and no
// metric token is discarded in metric-only mode, otherwise converted at
// 25.4 mm/in and rendered with two decimals. Anything else passes through
// unchanged (already metric, or unit-less like edge counts).
func Normalize(raw string, metricOnly bool) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return model.Sentinel
	}

	if metricRe.MatchString(v) {
		return v
	}

	if m := inchRe.FindStringSubmatch(v); m != nil {
		if metricOnly {
			return model.Sentinel
		}
		num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			return model.Sentinel
		}
		return fmt.Sprintf("%.2f mm", num*MMPerInch)
	}

	return v
}
