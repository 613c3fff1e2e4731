// Package mcgregor is the reference ExtensionAlgorithm.  It grows a seed map
// by connected backtracking in the style of McGregor's common-subgraph search
// and keeps the best-size mappings across a chain of calls.
package mcgregor

import (
	"context"
	"sort"
	"time"

	"github.com/turtacn/KeyIP-MCS/internal/domain/mcs"
	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/common"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
)

// EngineName labels this engine in logs and metrics.
const EngineName = "mcgregor"

// Extender implements mcs.ExtensionAlgorithm.
//
// A pair (a, b) may join the mapping when the atoms are compatible, a is
// bonded to some mapped atom m whose image n is bonded to b, and every bond
// that exists on both sides between the new pair and the mapping is
// compatible.  Bonds present on one side only are tolerated.
type Extender struct {
	limits  common.SearchLimits
	logger  logging.Logger
	metrics common.EngineMetrics
}

// NewExtender creates an extender.  A nil logger or metrics sink is replaced
// by a no-op.
func NewExtender(limits common.SearchLimits, logger logging.Logger, metrics common.EngineMetrics) *Extender {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopEngineMetrics()
	}
	return &Extender{limits: limits.WithDefaults(), logger: logger.Named(EngineName), metrics: metrics}
}

type growState struct {
	a, b       *molecule.AtomContainer
	p          mcs.Predicates
	budget     *common.Budget
	maxMatches int

	a2b       []int
	usedB     []bool
	forbidden []bool
	size      int

	best    int
	results [][]int
}

func (s *growState) assign(x, y int) {
	s.a2b[x] = y
	s.usedB[y] = true
	s.size++
}

func (s *growState) unassign(x int) {
	s.usedB[s.a2b[x]] = false
	s.a2b[x] = -1
	s.size--
}

func (s *growState) flat() []int {
	out := make([]int, 0, 2*s.size)
	for x, y := range s.a2b {
		if y != -1 {
			out = append(out, x, y)
		}
	}
	return out
}

func (s *growState) record() {
	if s.size == 0 {
		return
	}
	switch {
	case s.size > s.best:
		s.best = s.size
		s.results = s.results[:0]
	case s.size < s.best:
		return
	}
	if len(s.results) < s.maxMatches {
		s.results = append(s.results, s.flat())
	}
}

func (s *growState) frontier() int {
	for x := range s.a2b {
		if s.a2b[x] != -1 || s.forbidden[x] {
			continue
		}
		for _, n := range s.a.Neighbors(x) {
			if s.a2b[n] != -1 {
				return x
			}
		}
	}
	return -1
}

// candidates lists the atoms of b that x may map onto.
func (s *growState) candidates(x int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, m := range s.a.Neighbors(x) {
		n := s.a2b[m]
		if n == -1 {
			continue
		}
		for _, y := range s.b.Neighbors(n) {
			if !seen[y] && !s.usedB[y] && s.feasible(x, y) {
				seen[y] = true
				out = append(out, y)
			}
		}
	}
	sort.Ints(out)
	return out
}

func (s *growState) feasible(x, y int) bool {
	if !common.AtomsCompatible(s.a.Atom(x), s.b.Atom(y), s.p) {
		return false
	}
	for m, n := range s.a2b {
		if n == -1 {
			continue
		}
		ba := s.a.BondBetween(x, m)
		bb := s.b.BondBetween(y, n)
		if ba != nil && bb != nil && !common.BondsCompatible(ba, bb, s.p) {
			return false
		}
	}
	return true
}

func (s *growState) bound() int {
	free := 0
	for x, y := range s.a2b {
		if y == -1 && !s.forbidden[x] {
			free++
		}
	}
	return s.size + free
}

func (s *growState) grow() {
	if !s.budget.Step() || s.bound() < s.best {
		return
	}
	x := s.frontier()
	if x == -1 {
		s.record()
		return
	}
	for _, y := range s.candidates(x) {
		s.assign(x, y)
		s.grow()
		s.unassign(x)
		if s.budget.Truncated() {
			return
		}
	}
	s.forbidden[x] = true
	s.grow()
	s.forbidden[x] = false
}

// Extend grows req.Seed and merges the result into req.State.  The returned
// state is new; req.State is not modified.
func (e *Extender) Extend(ctx context.Context, req *mcs.ExtensionRequest) (*mcs.ExtensionState, error) {
	start := time.Now()
	if req == nil || req.GraphA == nil || req.GraphB == nil {
		return nil, errors.New(errors.CodeInvalidParam, "extension request needs both graphs")
	}

	s := &growState{
		a:          req.GraphA,
		b:          req.GraphB,
		p:          req.Predicates,
		maxMatches: e.limits.MaxMatches,
		a2b:        make([]int, req.GraphA.AtomCount()),
		usedB:      make([]bool, req.GraphB.AtomCount()),
		forbidden:  make([]bool, req.GraphA.AtomCount()),
	}
	for i := range s.a2b {
		s.a2b[i] = -1
	}
	for x, y := range req.Seed {
		if x < 0 || x >= len(s.a2b) || y < 0 || y >= len(s.usedB) {
			return nil, errors.InvalidIndexPair(x, y)
		}
		if s.a2b[x] != -1 || s.usedB[y] {
			return nil, errors.Newf(errors.CodeMappingConflict, "seed maps %d->%d twice", x, y)
		}
		s.assign(x, y)
	}

	budget, cancel := common.NewBudget(ctx, e.limits)
	defer cancel()
	s.budget = budget
	s.grow()

	e.metrics.RecordSearch(ctx, &common.SearchMetricParams{
		Engine:     EngineName,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
		Iterations: budget.Used(),
		Results:    len(s.results),
		Truncated:  budget.Truncated(),
		Success:    ctx.Err() == nil,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := budget.Err(ctx); err != nil {
		e.logger.Warn("extension stopped early", logging.Int("seed_size", len(req.Seed)), logging.Int("best_size", s.best), logging.Err(err))
	}

	next := merge(req.State, s.best, s.results, e.limits.MaxMatches)
	next.Orientation = req.Orientation
	e.logger.Debug("seed extended",
		logging.Int("seed_size", len(req.Seed)),
		logging.Int("best_size", next.BestSize),
		logging.Int("mappings", len(next.Mappings)),
	)
	return next, nil
}

// merge folds the mappings of one call into the accumulated state, keeping
// only the best size.
func merge(prev *mcs.ExtensionState, best int, results [][]int, maxMatches int) *mcs.ExtensionState {
	out := prev.Clone()
	if out == nil {
		out = &mcs.ExtensionState{}
	}
	switch {
	case best > out.BestSize:
		out.BestSize = best
		out.Mappings = nil
	case best < out.BestSize:
		return out
	}
	for _, r := range results {
		if len(out.Mappings) >= maxMatches {
			break
		}
		if !containsFlat(out.Mappings, r) {
			out.Mappings = append(out.Mappings, r)
		}
	}
	return out
}

func containsFlat(all [][]int, f []int) bool {
	for _, g := range all {
		if len(g) != len(f) {
			continue
		}
		same := true
		for i := range g {
			if g[i] != f[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

var _ mcs.ExtensionAlgorithm = (*Extender)(nil)

//Personal.AI order the ending
