package mcs

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Graph fixtures
// ─────────────────────────────────────────────────────────────────────────────

// carbonChain builds an n-atom linear carbon chain.
func carbonChain(t *testing.T, n int) *molecule.AtomContainer {
	t.Helper()
	symbols := make([]string, n)
	for i := range symbols {
		symbols[i] = "C"
	}
	return graphOf(t, symbols...)
}

// graphOf builds a linear chain with the given symbols.
func graphOf(t *testing.T, symbols ...string) *molecule.AtomContainer {
	t.Helper()
	atoms := make([]*molecule.Atom, len(symbols))
	var bonds []*molecule.Bond
	for i, s := range symbols {
		atoms[i] = &molecule.Atom{Index: i, Symbol: s}
		if i > 0 {
			bonds = append(bonds, &molecule.Bond{Begin: i - 1, End: i, Order: molecule.BondSingle})
		}
	}
	c, err := molecule.NewAtomContainer(atoms, bonds)
	require.NoError(t, err)
	return c
}

// corr builds a correspondence from source→target pairs.
func corr(t *testing.T, source, target *molecule.AtomContainer, pairs ...int) *Correspondence {
	t.Helper()
	c := NewCorrespondence(source, target)
	for i := 0; i+1 < len(pairs); i += 2 {
		require.NoError(t, c.Put(pairs[i], pairs[i+1]))
	}
	return c
}

// nodeMap builds an exact-matcher map from left/right index pairs.
func nodeMap(left, right *molecule.AtomContainer, pairs ...int) NodeMap {
	m := make(NodeMap, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m = append(m, NodePair{Left: left.Atom(pairs[i]), Right: right.Atom(pairs[i+1])})
	}
	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Collaborator stubs
// ─────────────────────────────────────────────────────────────────────────────

type mockExactMatcher struct {
	mock.Mock
}

func (m *mockExactMatcher) Match(ctx context.Context, left, right *molecule.AtomContainer, p Predicates) ([]NodeMap, error) {
	args := m.Called(ctx, left, right, p)
	maps, _ := args.Get(0).([]NodeMap)
	return maps, args.Error(1)
}

// exactFunc adapts a function to ExactMatcher.
type exactFunc func(left, right *molecule.AtomContainer) ([]NodeMap, error)

func (f exactFunc) Match(_ context.Context, left, right *molecule.AtomContainer, _ Predicates) ([]NodeMap, error) {
	return f(left, right)
}

type stubBuilder struct {
	graph *CompatibilityGraph
	err   error

	ac1, ac2   *molecule.AtomContainer
	predicates Predicates
	onBuild    func()
}

func (s *stubBuilder) Build(_ context.Context, ac1, ac2 *molecule.AtomContainer, p Predicates) (*CompatibilityGraph, error) {
	s.ac1, s.ac2, s.predicates = ac1, ac2, p
	if s.onBuild != nil {
		s.onBuild()
	}
	return s.graph, s.err
}

type stubEnumerator struct {
	cliques [][]int
	err     error
}

func (s *stubEnumerator) MaxCliques(_ context.Context, _ *CompatibilityGraph) ([][]int, error) {
	return s.cliques, s.err
}

type stubReducer struct {
	maps []map[int]int
	err  error

	first, second *molecule.AtomContainer
}

func (s *stubReducer) OverlapsAndReduce(_ context.Context, first, second *molecule.AtomContainer, _ Predicates) ([]map[int]int, error) {
	s.first, s.second = first, second
	return s.maps, s.err
}

// stubExtension records every request and answers with fn.
type stubExtension struct {
	mu   sync.Mutex
	fn   func(req *ExtensionRequest) (*ExtensionState, error)
	reqs []*ExtensionRequest
}

func (s *stubExtension) Extend(_ context.Context, req *ExtensionRequest) (*ExtensionState, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	return s.fn(req)
}

// echoExtension returns the accumulated mappings plus the seed itself,
// flattened in GraphA→GraphB order, keeping only the largest.
func echoExtension() *stubExtension {
	return &stubExtension{fn: func(req *ExtensionRequest) (*ExtensionState, error) {
		out := req.State.Clone()
		if out == nil {
			out = &ExtensionState{}
		}
		flat := make([]int, 0, 2*len(req.Seed))
		for a := 0; a < req.GraphA.AtomCount(); a++ {
			if b, ok := req.Seed[a]; ok {
				flat = append(flat, a, b)
			}
		}
		out.Mappings = append(out.Mappings, flat)
		if len(req.Seed) > out.BestSize {
			out.BestSize = len(req.Seed)
		}
		return out, nil
	}}
}

// ─────────────────────────────────────────────────────────────────────────────
// Recorder stub
// ─────────────────────────────────────────────────────────────────────────────

type countingRecorder struct {
	mu         sync.Mutex
	seeds      map[string]int
	dropped    map[string]int
	extensions map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		seeds:      map[string]int{},
		dropped:    map[string]int{},
		extensions: map[string]int{},
	}
}

func (r *countingRecorder) RecordSeeds(strategy string, count int) {
	r.mu.Lock()
	r.seeds[strategy] += count
	r.mu.Unlock()
}

func (r *countingRecorder) RecordDroppedPair(strategy string) {
	r.mu.Lock()
	r.dropped[strategy]++
	r.mu.Unlock()
}

func (r *countingRecorder) RecordExtension(orientation string) {
	r.mu.Lock()
	r.extensions[orientation]++
	r.mu.Unlock()
}

//Personal.AI order the ending
