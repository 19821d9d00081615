// Package supplier implements per-supplier resolution strategies. Each
// strategy drives an ordered attempt chain (known direct target, rendered
// navigation, static search, search-page fallback) and maps the six
// generic slots to supplier- and tool-type-specific meanings.
package supplier

import (
	"context"
	"strings"
	"time"

	"github.com/sells-group/toolspec-cli/internal/model"
)

// Strategy resolves one classified record into a SpecResult. A failed
// result with a message is the expected outcome for pages that yield
// nothing; errors are reserved for attempts the envelope should retry.
type Strategy interface {
	// Name is the identity used for case-insensitive registry lookup.
	Name() string

	// AttemptTimeout is the per-attempt deadline this strategy needs.
	// Rendering strategies request more than the envelope's base bound.
	AttemptTimeout() time.Duration

	// Resolve runs the attempt chain for a record.
	Resolve(ctx context.Context, rec *model.Record) (*model.SpecResult, error)
}

// Registry is the closed identity-to-handler map built at startup. Adding
// a supplier is a registration, not inheritance.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds a registry over the given strategies.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[strings.ToLower(s.Name())] = s
	}
	return r
}

// Lookup finds the strategy for a supplier identity.
func (r *Registry) Lookup(sup model.Supplier) (Strategy, bool) {
	s, ok := r.strategies[strings.ToLower(string(sup))]
	return s, ok
}
