package common

import (
	"context"
	"time"

	"github.com/turtacn/KeyIP-MCS/pkg/errors"
)

// ---------------------------------------------------------------------------
// Search limits
// ---------------------------------------------------------------------------

// SearchLimits bound the work of one engine call.  Zero fields fall back to
// DefaultSearchLimits.
type SearchLimits struct {
	// MaxIterations caps the search states visited per call.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`

	// MaxMatches caps the equally-sized results kept per call.
	MaxMatches int `json:"max_matches" yaml:"max_matches" mapstructure:"max_matches"`

	// MaxCliques caps the cliques returned by the enumerators.
	MaxCliques int `json:"max_cliques" yaml:"max_cliques" mapstructure:"max_cliques"`

	// Timeout bounds the wall-clock time of one call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// DefaultSearchLimits returns the limits used when none are configured.
func DefaultSearchLimits() SearchLimits {
	return SearchLimits{
		MaxIterations: 200000,
		MaxMatches:    64,
		MaxCliques:    256,
		Timeout:       10 * time.Second,
	}
}

// WithDefaults fills zero fields from DefaultSearchLimits.
func (l SearchLimits) WithDefaults() SearchLimits {
	d := DefaultSearchLimits()
	if l.MaxIterations <= 0 {
		l.MaxIterations = d.MaxIterations
	}
	if l.MaxMatches <= 0 {
		l.MaxMatches = d.MaxMatches
	}
	if l.MaxCliques <= 0 {
		l.MaxCliques = d.MaxCliques
	}
	if l.Timeout <= 0 {
		l.Timeout = d.Timeout
	}
	return l
}

// ---------------------------------------------------------------------------
// Budget
// ---------------------------------------------------------------------------

// Budget counts search steps against SearchLimits.MaxIterations and the
// caller's context.  It is not safe for concurrent use; each call owns one.
type Budget struct {
	ctx       context.Context
	max       int
	used      int
	truncated bool
}

// NewBudget starts a budget.  The returned cancel func must be called once
// the search finishes.
func NewBudget(ctx context.Context, limits SearchLimits) (*Budget, context.CancelFunc) {
	limits = limits.WithDefaults()
	ctx, cancel := context.WithTimeout(ctx, limits.Timeout)
	return &Budget{ctx: ctx, max: limits.MaxIterations}, cancel
}

// Step consumes one iteration.  It returns false once the iteration cap is
// hit or the context is done.
func (b *Budget) Step() bool {
	if b.truncated {
		return false
	}
	b.used++
	if b.used > b.max {
		b.truncated = true
		return false
	}
	// the context is polled every 256 steps
	if b.used%256 == 0 && b.ctx.Err() != nil {
		b.truncated = true
		return false
	}
	return true
}

// Used returns the iterations consumed.
func (b *Budget) Used() int { return b.used }

// Truncated reports whether the search stopped early.
func (b *Budget) Truncated() bool { return b.truncated }

// Err returns the context error when the caller cancelled, a soft
// SearchLimitExceeded error when the budget ran out, and nil otherwise.
// A deadline set by SearchLimits.Timeout counts as running out.
func (b *Budget) Err(parent context.Context) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if b.truncated {
		return errors.Newf(errors.CodeSearchLimitExceeded, "search stopped after %d iterations", b.used)
	}
	return nil
}

//Personal.AI order the ending
