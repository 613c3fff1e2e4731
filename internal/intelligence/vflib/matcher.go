// Package vflib is the reference ExactMatcher: a VF2-style backtracking
// search for the largest connected common induced substructures of two
// molecule graphs.
package vflib

import (
	"context"
	"time"

	"github.com/turtacn/KeyIP-MCS/internal/domain/mcs"
	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/common"
)

// EngineName labels this engine in logs and metrics.
const EngineName = "vflib"

// Matcher implements mcs.ExactMatcher.
//
// The search enumerates every connected common induced subgraph exactly once:
// a state is extended through the lowest-indexed frontier atom of the left
// graph, either by mapping it onto a compatible neighbour image in the right
// graph or by excluding it.  Only the maps of the largest size seen are kept.
//
// Thread Safety: Safe for concurrent use; every call owns its state.
type Matcher struct {
	limits  common.SearchLimits
	logger  logging.Logger
	metrics common.EngineMetrics
}

// Option customises a Matcher.
type Option func(*Matcher)

// WithLimits overrides the search limits.
func WithLimits(l common.SearchLimits) Option {
	return func(m *Matcher) { m.limits = l.WithDefaults() }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(em common.EngineMetrics) Option {
	return func(m *Matcher) {
		if em != nil {
			m.metrics = em
		}
	}
}

// NewMatcher creates a matcher.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		limits:  common.DefaultSearchLimits(),
		logger:  logging.NewNopLogger(),
		metrics: common.NewNoopEngineMetrics(),
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = m.logger.Named(EngineName)
	return m
}

// -----------------------------------------------------------------------------
// Search state
// -----------------------------------------------------------------------------

type vfState struct {
	left, right *molecule.AtomContainer
	p           mcs.Predicates
	budget      *common.Budget
	maxMatches  int

	l2r       []int  // left atom -> right atom, -1 when unmapped
	usedR     []bool // right atoms already in the image
	forbidden []bool // left atoms excluded from this branch
	size      int

	best    int
	matches [][]int // snapshots of l2r at size best
}

func newVFState(left, right *molecule.AtomContainer, p mcs.Predicates, budget *common.Budget, maxMatches int) *vfState {
	s := &vfState{
		left:       left,
		right:      right,
		p:          p,
		budget:     budget,
		maxMatches: maxMatches,
		l2r:        make([]int, left.AtomCount()),
		usedR:      make([]bool, right.AtomCount()),
		forbidden:  make([]bool, left.AtomCount()),
	}
	for i := range s.l2r {
		s.l2r[i] = -1
	}
	return s
}

func (s *vfState) assign(l, r int) {
	s.l2r[l] = r
	s.usedR[r] = true
	s.size++
}

func (s *vfState) unassign(l int) {
	s.usedR[s.l2r[l]] = false
	s.l2r[l] = -1
	s.size--
}

// record keeps the current mapping when it ties or beats the best size.
func (s *vfState) record() {
	switch {
	case s.size > s.best:
		s.best = s.size
		s.matches = s.matches[:0]
	case s.size < s.best:
		return
	}
	if len(s.matches) >= s.maxMatches {
		return
	}
	s.matches = append(s.matches, append([]int(nil), s.l2r...))
}

// frontier returns the lowest-indexed left atom that is unmapped, not
// forbidden and bonded to a mapped atom, together with that mapped neighbour.
func (s *vfState) frontier() (atom, anchor int) {
	for l := 0; l < len(s.l2r); l++ {
		if s.l2r[l] != -1 || s.forbidden[l] {
			continue
		}
		for _, n := range s.left.Neighbors(l) {
			if s.l2r[n] != -1 {
				return l, n
			}
		}
	}
	return -1, -1
}

// feasible checks atom compatibility and induced bond consistency against
// every mapped pair.
func (s *vfState) feasible(l, r int) bool {
	if s.usedR[r] || !common.AtomsCompatible(s.left.Atom(l), s.right.Atom(r), s.p) {
		return false
	}
	for m, n := range s.l2r {
		if n == -1 {
			continue
		}
		bl := s.left.BondBetween(l, m)
		br := s.right.BondBetween(r, n)
		if (bl == nil) != (br == nil) {
			return false
		}
		if bl != nil && !common.BondsCompatible(bl, br, s.p) {
			return false
		}
	}
	return true
}

// upperBound is the largest size this branch can still reach.
func (s *vfState) upperBound() int {
	freeL := 0
	for l, r := range s.l2r {
		if r == -1 && !s.forbidden[l] {
			freeL++
		}
	}
	freeR := 0
	for _, used := range s.usedR {
		if !used {
			freeR++
		}
	}
	if freeR < freeL {
		freeL = freeR
	}
	return s.size + freeL
}

func (s *vfState) search() {
	if !s.budget.Step() {
		return
	}
	if s.upperBound() < s.best {
		return
	}

	l, anchor := s.frontier()
	if l == -1 {
		// leaves are reached once per mapping
		s.record()
		return
	}
	for _, r := range s.right.Neighbors(s.l2r[anchor]) {
		if !s.feasible(l, r) {
			continue
		}
		s.assign(l, r)
		s.search()
		s.unassign(l)
		if s.budget.Truncated() {
			return
		}
	}

	s.forbidden[l] = true
	s.search()
	s.forbidden[l] = false
}

// -----------------------------------------------------------------------------
// ExactMatcher
// -----------------------------------------------------------------------------

// Match returns the largest connected common induced substructures of left
// and right as node maps, Left atoms from left and Right atoms from right.
// Hitting the iteration cap returns what was found so far; cancelling ctx
// returns ctx.Err().
func (m *Matcher) Match(ctx context.Context, left, right *molecule.AtomContainer, p mcs.Predicates) ([]mcs.NodeMap, error) {
	start := time.Now()
	if left == nil || right == nil || left.AtomCount() == 0 || right.AtomCount() == 0 {
		return []mcs.NodeMap{}, nil
	}

	budget, cancel := common.NewBudget(ctx, m.limits)
	defer cancel()
	s := newVFState(left, right, p, budget, m.limits.MaxMatches)

	// every connected subgraph is rooted at its lowest left atom
	for l0 := 0; l0 < left.AtomCount() && !budget.Truncated(); l0++ {
		for r0 := 0; r0 < right.AtomCount(); r0++ {
			if !s.feasible(l0, r0) {
				continue
			}
			s.assign(l0, r0)
			s.search()
			s.unassign(l0)
			if budget.Truncated() {
				break
			}
		}
		s.forbidden[l0] = true
	}

	err := budget.Err(ctx)
	m.metrics.RecordSearch(ctx, &common.SearchMetricParams{
		Engine:     EngineName,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
		Iterations: budget.Used(),
		Results:    len(s.matches),
		Truncated:  budget.Truncated(),
		Success:    ctx.Err() == nil,
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		m.logger.Warn("search stopped early", logging.Int("iterations", budget.Used()), logging.Int("best_size", s.best), logging.Err(err))
	}

	out := make([]mcs.NodeMap, 0, len(s.matches))
	for _, l2r := range s.matches {
		nm := make(mcs.NodeMap, 0, s.best)
		for l, r := range l2r {
			if r != -1 {
				nm = append(nm, mcs.NodePair{Left: left.Atom(l), Right: right.Atom(r)})
			}
		}
		out = append(out, nm)
	}
	m.logger.Debug("exact search finished",
		logging.Int("maps", len(out)),
		logging.Int("best_size", s.best),
		logging.Int("iterations", budget.Used()),
	)
	return out, nil
}

var _ mcs.ExactMatcher = (*Matcher)(nil)

//Personal.AI order the ending
