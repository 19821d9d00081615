package supplier

import (
	"github.com/sells-group/toolspec-cli/internal/fetcher"
	"github.com/sells-group/toolspec-cli/internal/model"
	"github.com/sells-group/toolspec-cli/pkg/render"
)

// The alias tables anchor extraction to the short attribute codes the
// suppliers print next to values (ISO 13399-style), with the spelled-out
// labels as fallbacks. Slot meaning shifts with tool type: an endmill's
// third slot is its corner radius, a drill has none and carries a fixed
// two-edge point instead.

// SecoSite is the Seco Tools resolution surface.
func SecoSite() Site {
	return Site{
		Identity:     "seco",
		EntryURL:     "https://www.secotools.com/article/search",
		SearchURL:    "https://www.secotools.com/search?q=%s",
		SearchBox:    `input[name="query"]`,
		SearchReveal: `button.search-toggle`,
		Aliases: map[model.ToolType]AliasSet{
			model.ToolSolidEndmill: {
				model.SlotDiameter:      {"DC", "cutting diameter", "diameter"},
				model.SlotFluteLength:   {"APMX", "LU", "depth of cut", "flute length"},
				model.SlotCornerRadius:  {"RE", "corner radius"},
				model.SlotOverallLength: {"OAL", "LF", "overall length"},
				model.SlotEdgeCount:     {"ZEFP", "number of flutes", "flutes"},
				model.SlotShankDiameter: {"DMM", "shank diameter", "shank"},
			},
			model.ToolBallNoseEndmill: {
				model.SlotDiameter:      {"DC", "cutting diameter", "diameter"},
				model.SlotFluteLength:   {"APMX", "LU", "depth of cut", "flute length"},
				model.SlotCornerRadius:  {"RE", "corner radius", "ball radius"},
				model.SlotOverallLength: {"OAL", "LF", "overall length"},
				model.SlotEdgeCount:     {"ZEFP", "number of flutes", "flutes"},
				model.SlotShankDiameter: {"DMM", "shank diameter", "shank"},
			},
			model.ToolSolidDrill: {
				model.SlotDiameter:      {"DC", "drill diameter", "diameter"},
				model.SlotFluteLength:   {"LU", "usable length", "flute length"},
				model.SlotOverallLength: {"OAL", "LF", "overall length"},
				model.SlotShankDiameter: {"DMM", "shank diameter", "shank"},
			},
			model.ToolSolidReamer: {
				model.SlotDiameter:      {"DC", "reamer diameter", "diameter"},
				model.SlotFluteLength:   {"LU", "cutting length", "flute length"},
				model.SlotOverallLength: {"OAL", "LF", "overall length"},
				model.SlotEdgeCount:     {"ZEFP", "number of flutes", "flutes"},
				model.SlotShankDiameter: {"DMM", "shank diameter", "shank"},
			},
		},
	}
}

// SandvikSite is the Sandvik Coromant resolution surface.
func SandvikSite() Site {
	endmill := AliasSet{
		model.SlotDiameter:      {"DC", "cutting diameter"},
		model.SlotFluteLength:   {"APMX", "maximum depth of cut", "cutting length"},
		model.SlotCornerRadius:  {"RE", "corner radius"},
		model.SlotOverallLength: {"OAL", "functional length", "overall length"},
		model.SlotEdgeCount:     {"ZEFP", "effective cutting edge count", "flutes"},
		model.SlotShankDiameter: {"DMM", "connection diameter", "shank diameter"},
	}
	return Site{
		Identity:  "sandvik",
		EntryURL:  "https://www.sandvik.coromant.com/en-gb/tools",
		SearchURL: "https://www.sandvik.coromant.com/en-gb/search?q=%s",
		SearchBox: `input[type="search"]`,
		Aliases: map[model.ToolType]AliasSet{
			model.ToolSolidEndmill:    endmill,
			model.ToolBallNoseEndmill: endmill,
			model.ToolSolidDrill: {
				model.SlotDiameter:      {"DC", "drill diameter"},
				model.SlotFluteLength:   {"LU", "usable length"},
				model.SlotOverallLength: {"OAL", "functional length", "overall length"},
				model.SlotShankDiameter: {"DMM", "connection diameter", "shank diameter"},
			},
			model.ToolSolidReamer: endmill,
		},
	}
}

// WalterSite is the Walter Tools resolution surface.
func WalterSite() Site {
	endmill := AliasSet{
		model.SlotDiameter:      {"DC", "Dc", "cutting diameter"},
		model.SlotFluteLength:   {"LC", "cutting edge length", "flute length"},
		model.SlotCornerRadius:  {"RE", "corner radius"},
		model.SlotOverallLength: {"LT", "total length", "overall length"},
		model.SlotEdgeCount:     {"Z", "number of teeth", "flutes"},
		model.SlotShankDiameter: {"DMM", "shank diameter"},
	}
	return Site{
		Identity:  "walter",
		EntryURL:  "https://www.walter-tools.com/en-gb/search",
		SearchURL: "https://www.walter-tools.com/en-gb/search?text=%s",
		SearchBox: `#searchTerm`,
		Aliases: map[model.ToolType]AliasSet{
			model.ToolSolidEndmill:    endmill,
			model.ToolBallNoseEndmill: endmill,
			model.ToolSolidDrill: {
				model.SlotDiameter:      {"DC", "Dc", "drill diameter"},
				model.SlotFluteLength:   {"LC", "flute length"},
				model.SlotOverallLength: {"LT", "total length", "overall length"},
				model.SlotShankDiameter: {"DMM", "shank diameter"},
			},
			model.ToolSolidReamer: endmill,
		},
	}
}

// KennametalSite is the Kennametal resolution surface.
func KennametalSite() Site {
	endmill := AliasSet{
		model.SlotDiameter:      {"D1", "cutting diameter", "diameter"},
		model.SlotFluteLength:   {"AP1", "depth of cut", "flute length"},
		model.SlotCornerRadius:  {"RE", "corner radius"},
		model.SlotOverallLength: {"L", "overall length"},
		model.SlotEdgeCount:     {"FLUTECOUNT", "number of flutes", "flutes"},
		model.SlotShankDiameter: {"D", "shank diameter", "shank"},
	}
	return Site{
		Identity:     "kennametal",
		EntryURL:     "https://www.kennametal.com/us/en/home.html",
		SearchURL:    "https://www.kennametal.com/us/en/search.html?q=%s",
		SearchBox:    `input#search-field`,
		SearchReveal: `button#searchToggle`,
		Aliases: map[model.ToolType]AliasSet{
			model.ToolSolidEndmill:    endmill,
			model.ToolBallNoseEndmill: endmill,
			model.ToolSolidDrill: {
				model.SlotDiameter:      {"D1", "drill diameter", "diameter"},
				model.SlotFluteLength:   {"FL", "flute length"},
				model.SlotOverallLength: {"L", "overall length"},
				model.SlotShankDiameter: {"D", "shank diameter", "shank"},
			},
			model.ToolSolidReamer: endmill,
		},
	}
}

// DefaultRegistry builds the registry over all supported suppliers.
func DefaultRegistry(f *fetcher.HTTPFetcher, r render.Client, opts Options) *Registry {
	return NewRegistry(
		New(SecoSite(), f, r, opts),
		New(SandvikSite(), f, r, opts),
		New(WalterSite(), f, r, opts),
		New(KennametalSite(), f, r, opts),
	)
}
