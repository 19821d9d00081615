// Package decode infers tool attributes directly from part-number
// descriptions using known supplier encoding conventions. It is a
// best-effort enrichment with no network calls: results always report
// success and are only as good as the encoding rules.
//
// Decode is an explicit, separately invoked stage (the decode command and
// the job decode endpoint); the orchestrator never chains it after a
// failed page resolution.
package decode

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/toolspec-cli/internal/model"
)

// rule is one part-number convention: a supplier, an optional tool-type
// restriction, a pattern, and an apply func populating slots from the
// submatches.
type rule struct {
	supplier model.Supplier
	tool     model.ToolType // "" matches any tool type
	re       *regexp.Regexp
	apply    func(m []string, res *model.SpecResult)
}

var rules = []rule{
	// Seco solid drills: SD<family>-<dia*100>-<flute len>-<shank>R<...>,
	// e.g. SD1103-1000-035-10R1 -> d10.0, l35, shank 10.
	{
		supplier: model.SupplierSeco,
		tool:     model.ToolSolidDrill,
		re:       regexp.MustCompile(`(?i)^SD\d+[A-Z]?-(\d{3,4})-(\d{2,3})-(\d{1,3})R`),
		apply: func(m []string, res *model.SpecResult) {
			res.Set(model.SlotDiameter, scaledMM(m[1], 100, 1))
			res.Set(model.SlotOverallLength, intMM(m[2]))
			res.Set(model.SlotShankDiameter, intMM(m[3]))
		},
	},
	// Seco solid endmills: JS<family><dia*10>...Z<flutes>, optional
	// R<radius*100>, e.g. JS554100E2R050.0Z4 -> d10.0, r0.50, z4.
	{
		supplier: model.SupplierSeco,
		re:       regexp.MustCompile(`(?i)^JS\d{3}(\d{3})`),
		apply: func(m []string, res *model.SpecResult) {
			res.Set(model.SlotDiameter, scaledMM(m[1], 10, 1))
		},
	},
	// Sandvik CoroDrill: 860.1-1000-035A1-... -> d10.0, flute len 35.
	{
		supplier: model.SupplierSandvik,
		tool:     model.ToolSolidDrill,
		re:       regexp.MustCompile(`(?i)^8\d{2}\.\d-(\d{4})-(\d{2,3})`),
		apply: func(m []string, res *model.SpecResult) {
			res.Set(model.SlotDiameter, scaledMM(m[1], 100, 1))
			res.Set(model.SlotFluteLength, intMM(m[2]))
		},
	},
	// Sandvik CoroMill Plura: 2P342-1000-PA... -> d10.0.
	{
		supplier: model.SupplierSandvik,
		re:       regexp.MustCompile(`(?i)^2[PFS]\d{3}-(\d{4})`),
		apply: func(m []string, res *model.SpecResult) {
			res.Set(model.SlotDiameter, scaledMM(m[1], 100, 1))
		},
	},
	// Walter solid drills: DC160-05-10.000A1-WJ30ET -> d10.0.
	{
		supplier: model.SupplierWalter,
		tool:     model.ToolSolidDrill,
		re:       regexp.MustCompile(`(?i)^DC\d{3}-\d{2}-(\d{1,2}\.\d{1,3})`),
		apply: func(m []string, res *model.SpecResult) {
			res.Set(model.SlotDiameter, floatMM(m[1]))
		},
	},
	// Walter solid endmills: MC232-10.0A4B-... -> d10.0, 4 flutes.
	{
		supplier: model.SupplierWalter,
		re:       regexp.MustCompile(`(?i)^MC\d{3}-(\d{1,2}\.\d)A(\d)`),
		apply: func(m []string, res *model.SpecResult) {
			res.Set(model.SlotDiameter, floatMM(m[1]))
			res.Set(model.SlotEdgeCount, m[2])
		},
	},
	// Kennametal solid drills: B041A10000CPG -> d10.0 (dia*1000).
	{
		supplier: model.SupplierKennametal,
		tool:     model.ToolSolidDrill,
		re:       regexp.MustCompile(`(?i)^B\d{3}A(\d{5})`),
		apply: func(m []string, res *model.SpecResult) {
			res.Set(model.SlotDiameter, scaledMM(m[1], 1000, 1))
		},
	},
}

// Decode populates the six slots from a record description. Unrecognized
// suppliers fall back to the generic numeric heuristic. Always reports
// success.
func Decode(description string, supplier model.Supplier, tool model.ToolType) *model.SpecResult {
	res := model.NewSpecResult()
	res.Success = true

	desc := strings.TrimSpace(description)
	matched := false
	for _, r := range rules {
		if r.supplier != supplier {
			continue
		}
		if r.tool != "" && r.tool != tool {
			continue
		}
		m := r.re.FindStringSubmatch(desc)
		if m == nil {
			continue
		}
		r.apply(m, res)
		matched = true
		break
	}

	if !matched {
		genericDecode(desc, res)
	}

	applyToolDefaults(tool, res)
	return res
}

// genericDecode takes the first plausible numeric tokens: 1-50 as
// diameter, 20-300 as overall length, a decimal in 0.1-5 as corner radius.
var numTokenRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

func genericDecode(desc string, res *model.SpecResult) {
	used := map[int]bool{}
	tokens := numTokenRe.FindAllStringIndex(desc, -1)

	pick := func(min, max float64, decimalOnly bool) string {
		for i, loc := range tokens {
			if used[i] {
				continue
			}
			tok := desc[loc[0]:loc[1]]
			if decimalOnly && !strings.Contains(tok, ".") {
				continue
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil || v < min || v > max {
				continue
			}
			used[i] = true
			return tok + " mm"
		}
		return ""
	}

	res.Set(model.SlotDiameter, pick(1, 50, false))
	res.Set(model.SlotOverallLength, pick(20, 300, false))
	res.Set(model.SlotCornerRadius, pick(0.1, 5, true))
}

// applyToolDefaults enforces the tool-type slot mapping: drills have no
// corner radius and a fixed two-edge geometry; reamers likewise carry no
// corner radius.
func applyToolDefaults(tool model.ToolType, res *model.SpecResult) {
	switch tool {
	case model.ToolSolidDrill:
		res.Slots[model.SlotCornerRadius] = model.Sentinel
		res.Slots[model.SlotEdgeCount] = "2"
	case model.ToolSolidReamer:
		res.Slots[model.SlotCornerRadius] = model.Sentinel
	}
}

// scaledMM renders digits/scale with prec decimals and a mm suffix.
func scaledMM(digits string, scale float64, prec int) string {
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(n/scale, 'f', prec, 64) + " mm"
}

// intMM renders a zero-padded digit group as an integer with a mm suffix.
func intMM(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return ""
	}
	return strconv.Itoa(n) + " mm"
}

// floatMM renders a literal decimal with a mm suffix.
func floatMM(tok string) string {
	if _, err := strconv.ParseFloat(tok, 64); err != nil {
		return ""
	}
	return tok + " mm"
}
