package supplier

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/toolspec-cli/internal/classify"
	"github.com/sells-group/toolspec-cli/internal/extract"
	"github.com/sells-group/toolspec-cli/internal/fetcher"
	"github.com/sells-group/toolspec-cli/internal/model"
	"github.com/sells-group/toolspec-cli/internal/units"
	"github.com/sells-group/toolspec-cli/pkg/render"
)

// AliasSet maps each slot to the ordered candidate labels/codes a supplier
// uses for it on product pages.
type AliasSet map[model.Slot][]string

// Site describes one supplier's resolution surface.
type Site struct {
	// Identity is the registry key, matched case-insensitively against a
	// record's normalized supplier.
	Identity string

	// EntryURL is the page the rendered navigation starts from.
	EntryURL string

	// SearchURL is the static search endpoint; %s receives the escaped
	// query.
	SearchURL string

	// SearchBox is the selector of the search input on the entry page.
	SearchBox string

	// SearchReveal, when set, is clicked first to reveal a hidden search
	// control.
	SearchReveal string

	// Aliases holds per-tool-type attribute vocabularies. ToolUnsupported
	// never reaches a strategy, so only supported types appear here.
	Aliases map[model.ToolType]AliasSet

	// Direct maps known part descriptions to previously-resolved product
	// URLs. Optional, may be empty.
	Direct map[string]string

	// SufficientSlots is the per-supplier "has enough data" predicate: a
	// result short-circuits the chain when any of these slots resolved.
	// Defaults to diameter, overall length, corner radius.
	SufficientSlots []model.Slot
}

// Options tunes a site strategy.
type Options struct {
	// MetricOnly rejects non-metric matches instead of converting them.
	MetricOnly bool

	// AttemptTimeout is the per-attempt deadline the strategy requests
	// from the envelope; rendering needs the large bound. Default: 90s.
	AttemptTimeout time.Duration

	// SettleMillis is how long rendered navigation waits for client-side
	// rendering to settle. Default: 3000.
	SettleMillis int
}

type siteStrategy struct {
	site     Site
	fetcher  *fetcher.HTTPFetcher
	renderer render.Client
	opts     Options
}

// New builds a Strategy for one supplier site.
func New(site Site, f *fetcher.HTTPFetcher, r render.Client, opts Options) Strategy {
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 90 * time.Second
	}
	if opts.SettleMillis <= 0 {
		opts.SettleMillis = 3000
	}
	if len(site.SufficientSlots) == 0 {
		site.SufficientSlots = []model.Slot{
			model.SlotDiameter, model.SlotOverallLength, model.SlotCornerRadius,
		}
	}
	return &siteStrategy{site: site, fetcher: f, renderer: r, opts: opts}
}

func (s *siteStrategy) Name() string { return s.site.Identity }

func (s *siteStrategy) AttemptTimeout() time.Duration { return s.opts.AttemptTimeout }

// step is one technique in the attempt chain.
type step struct {
	name string
	run  func(ctx context.Context) (*model.SpecResult, error)
}

// Resolve runs the chain, short-circuiting on the first result that meets
// the sufficiency predicate. Step errors (including rendering failures)
// fall through to the next step; the record fails only after the whole
// chain is exhausted.
func (s *siteStrategy) Resolve(ctx context.Context, rec *model.Record) (*model.SpecResult, error) {
	tool := classify.ToolType(rec.TypeLabel)

	// The static search page is kept for the final fallback so it is not
	// fetched twice.
	var searchDoc *extract.Document

	steps := []step{
		{"direct", func(ctx context.Context) (*model.SpecResult, error) {
			return s.directLookup(ctx, rec, tool)
		}},
		{"rendered_search", func(ctx context.Context) (*model.SpecResult, error) {
			return s.renderedSearch(ctx, rec, tool)
		}},
		{"static_search", func(ctx context.Context) (*model.SpecResult, error) {
			doc, res, err := s.staticSearch(ctx, rec, tool)
			if doc != nil {
				searchDoc = doc
			}
			return res, err
		}},
		{"search_page", func(ctx context.Context) (*model.SpecResult, error) {
			if searchDoc == nil {
				return nil, nil
			}
			return s.extractSlots(searchDoc, tool), nil
		}},
	}

	var best *model.SpecResult
	var lastErr error
	anyCompleted := false

	for _, st := range steps {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		res, err := st.run(ctx)
		if err != nil {
			lastErr = err
			zap.L().Debug("attempt step failed, trying next",
				zap.String("supplier", s.site.Identity),
				zap.String("step", st.name),
				zap.String("item", rec.Description),
				zap.Error(err),
			)
			continue
		}
		if res == nil {
			continue
		}
		anyCompleted = true

		if s.sufficient(res) {
			res.Success = true
			return res, nil
		}
		if best == nil || countResolved(res) > countResolved(best) {
			best = res
		}
	}

	// Every step errored without producing a document: let the envelope
	// classify and retry.
	if !anyCompleted && lastErr != nil {
		return nil, lastErr
	}

	// Exhausted with at most partial data. Expected, not exceptional.
	out := model.NewSpecResult()
	if best != nil {
		out.Slots = best.Slots
	}
	out.Err = fmt.Sprintf("%s: no attempt yielded sufficient data for %q", s.site.Identity, rec.Description)
	return out, nil
}

// directLookup resolves descriptions with a known product page.
func (s *siteStrategy) directLookup(ctx context.Context, rec *model.Record, tool model.ToolType) (*model.SpecResult, error) {
	target, ok := s.site.Direct[normalizeKey(rec.Description)]
	if !ok {
		return nil, nil
	}
	body, err := s.fetcher.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	return s.extractSlots(extract.NewDocument(string(body)), tool), nil
}

// renderedSearch drives the supplier's entry page in a headless browser:
// reveal the search control if hidden, fill it, submit, wait for the
// client-side render to settle, then scan the visible text for code/value
// pairs. Markup is unstable on these pages, so extraction is anchored to
// code tokens, not DOM selectors.
func (s *siteStrategy) renderedSearch(ctx context.Context, rec *model.Record, tool model.ToolType) (*model.SpecResult, error) {
	var actions []render.Action
	if s.site.SearchReveal != "" {
		actions = append(actions, render.Click(s.site.SearchReveal), render.Wait(500))
	}
	actions = append(actions,
		render.Write(s.site.SearchBox, rec.Description),
		render.Press("Enter"),
		render.Wait(s.opts.SettleMillis),
	)

	resp, err := s.renderer.Render(ctx, render.Request{
		URL:           s.site.EntryURL,
		Actions:       actions,
		WaitMillis:    s.opts.SettleMillis,
		TimeoutMillis: int(s.opts.AttemptTimeout / time.Millisecond),
	})
	if err != nil {
		return nil, err
	}

	var doc *extract.Document
	switch {
	case resp.Data.HTML != "":
		doc = extract.NewDocument(resp.Data.HTML)
	case resp.Data.Text != "":
		doc = extract.FromText(resp.Data.Text)
	default:
		return nil, fmt.Errorf("%s: rendered page is empty", s.site.Identity)
	}
	return s.extractSlots(doc, tool), nil
}

// staticSearch requests the search endpoint without rendering, follows the
// most plausible product link and extracts from the product page. The
// fetched search page is returned for the final fallback.
func (s *siteStrategy) staticSearch(ctx context.Context, rec *model.Record, tool model.ToolType) (*extract.Document, *model.SpecResult, error) {
	searchURL := fmt.Sprintf(s.site.SearchURL, url.QueryEscape(rec.Description))
	body, err := s.fetcher.Get(ctx, searchURL)
	if err != nil {
		return nil, nil, err
	}
	doc := extract.NewDocument(string(body))

	link := bestProductLink(string(body), searchURL, rec.Description)
	if link == "" {
		return doc, nil, fmt.Errorf("%s: no product link on search page", s.site.Identity)
	}

	page, err := s.fetcher.Get(ctx, link)
	if err != nil {
		return doc, nil, err
	}
	return doc, s.extractSlots(extract.NewDocument(string(page)), tool), nil
}

// slotKinds fixes the value shape each slot expects.
var slotKinds = map[model.Slot]extract.Kind{
	model.SlotDiameter:      extract.Dimension,
	model.SlotFluteLength:   extract.Dimension,
	model.SlotCornerRadius:  extract.Dimension,
	model.SlotOverallLength: extract.Dimension,
	model.SlotEdgeCount:     extract.Count,
	model.SlotShankDiameter: extract.Compound,
}

// extractSlots runs the heuristics for each slot and applies the
// tool-type mapping.
func (s *siteStrategy) extractSlots(doc *extract.Document, tool model.ToolType) *model.SpecResult {
	aliases, ok := s.site.Aliases[tool]
	if !ok {
		aliases = s.site.Aliases[model.ToolSolidEndmill]
	}

	res := model.NewSpecResult()
	for slot := model.Slot(0); slot < model.NumSlots; slot++ {
		names := aliases[slot]
		if len(names) == 0 {
			continue
		}
		raw, found := extract.Find(doc, names, extract.Options{
			MetricOnly: s.opts.MetricOnly,
			Kind:       slotKinds[slot],
		})
		if !found {
			continue
		}
		res.Set(slot, units.Normalize(raw, s.opts.MetricOnly))
	}

	mapToolSlots(tool, res)
	res.Success = res.HasData()
	return res
}

// mapToolSlots enforces tool-type slot semantics: a drill has no corner
// radius and a fixed two-edge point; a reamer has no corner radius. The
// drill constant is only written alongside real page data so an empty
// extraction stays empty.
func mapToolSlots(tool model.ToolType, res *model.SpecResult) {
	hadData := res.HasData()
	switch tool {
	case model.ToolSolidDrill:
		res.Slots[model.SlotCornerRadius] = model.Sentinel
		if hadData {
			res.Slots[model.SlotEdgeCount] = "2"
		}
	case model.ToolSolidReamer:
		res.Slots[model.SlotCornerRadius] = model.Sentinel
	}
}

func (s *siteStrategy) sufficient(res *model.SpecResult) bool {
	for _, slot := range s.site.SufficientSlots {
		if v := res.Get(slot); v != "" && v != model.Sentinel {
			return true
		}
	}
	return false
}

func countResolved(res *model.SpecResult) int {
	n := 0
	for _, v := range res.Slots {
		if v != "" && v != model.Sentinel {
			n++
		}
	}
	return n
}

func normalizeKey(desc string) string {
	return strings.ToUpper(strings.TrimSpace(desc))
}
