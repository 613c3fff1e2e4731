package mcs

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/testutil"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

// exactReturning answers every Match call with maps built on whatever graphs
// the orchestrator passed in.
func exactReturning(pairs ...[]int) exactFunc {
	return func(left, right *molecule.AtomContainer) ([]NodeMap, error) {
		out := make([]NodeMap, len(pairs))
		for i, p := range pairs {
			out[i] = nodeMap(left, right, p...)
		}
		return out, nil
	}
}

func newTestOrchestrator(t *testing.T, src, tgt *molecule.AtomContainer, opts Options, collab Collaborators, options ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(src, tgt, opts, collab, options...)
	require.NoError(t, err)
	return o
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

func TestNewOrchestrator_Validation(t *testing.T) {
	src, tgt := carbonChain(t, 3), carbonChain(t, 4)
	empty, err := molecule.NewAtomContainer(nil, nil)
	require.NoError(t, err)
	exact := exactReturning()
	ext := echoExtension()
	full := Collaborators{Exact: exact, Builder: &stubBuilder{}, Enumerator: &stubEnumerator{}, Reducer: &stubReducer{}, Extension: ext}

	cases := []struct {
		name     string
		src, tgt *molecule.AtomContainer
		opts     Options
		collab   Collaborators
		code     errors.ErrorCode
	}{
		{"nil source", nil, tgt, Options{}, full, errors.CodeGraphInvalid},
		{"nil target", src, nil, Options{}, full, errors.CodeGraphInvalid},
		{"empty source", empty, tgt, Options{}, full, errors.CodeGraphInvalid},
		{"query target", src, tgt.AsQuery(), Options{}, full, errors.CodeGraphInvalid},
		{"unknown algorithm", src, tgt, Options{Algorithm: "ullmann"}, full, errors.CodeAlgorithmUnsupported},
		{"no exact matcher", src, tgt, Options{Algorithm: mcstypes.AlgorithmVFLib}, Collaborators{}, errors.CodeInvalidParam},
		{"default without extension", src, tgt, Options{}, Collaborators{Exact: exact}, errors.CodeInvalidParam},
		{"mcsplus without enumerator", src, tgt, Options{Algorithm: mcstypes.AlgorithmMCSPlus},
			Collaborators{Exact: exact, Builder: &stubBuilder{}, Extension: ext}, errors.CodeInvalidParam},
		{"cdkmcs without reducer", src, tgt, Options{Algorithm: mcstypes.AlgorithmCDKMCS},
			Collaborators{Exact: exact, Extension: ext}, errors.CodeInvalidParam},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			o, err := NewOrchestrator(tc.src, tc.tgt, tc.opts, tc.collab)
			assert.Nil(t, o)
			assert.True(t, errors.IsCode(err, tc.code), "got %v", err)
		})
	}

	o, err := NewOrchestrator(src, tgt, Options{Algorithm: mcstypes.AlgorithmVFLib}, Collaborators{Exact: exact})
	require.NoError(t, err, "vflib runs without an extension algorithm")
	assert.Equal(t, StateIdle, o.State())

	o, err = NewOrchestrator(src.AsQuery(), tgt, Options{}, Collaborators{Exact: exact, Extension: ext})
	require.NoError(t, err, "a query source is allowed")
	assert.Equal(t, QueryPredicates, o.predicates)
}

// ─────────────────────────────────────────────────────────────────────────────
// Exact-only runs
// ─────────────────────────────────────────────────────────────────────────────

func TestRun_VFLibKeepsOnlyTheLargestTier(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	exact := &mockExactMatcher{}
	exact.On("Match", mock.Anything, src, tgt, Predicates{}).Return([]NodeMap{
		nodeMap(src, tgt, 0, 0, 1, 1),
		nodeMap(src, tgt, 0, 1, 1, 2, 2, 3),
	}, nil).Once()
	logger := testutil.NewMockLogger()
	rec := newCountingRecorder()

	o := newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmVFLib}, Collaborators{Exact: exact},
		WithLogger(logger), WithRecorder(rec))
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	exact.AssertExpectations(t)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, []IndexPair{{0, 1}, {1, 2}, {2, 3}}, res.Solutions[0].Pairs())
	assert.Equal(t, 3, res.BestSize)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, StateDone, o.State())
	assert.False(t, res.Extended)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, res.RunID, o.RunID())
	assert.Equal(t, 1, rec.seeds[StrategyExact], "the smaller map sorts second and is rejected")
	assert.True(t, logger.HasMessage("info", "matching run started"))
	assert.True(t, logger.HasMessage("info", "matching run finished"))
}

func TestRun_LargerSourceIsMatchedOnTheRight(t *testing.T) {
	src, tgt := carbonChain(t, 5), carbonChain(t, 3)
	var seenLeft *molecule.AtomContainer
	exact := exactFunc(func(left, right *molecule.AtomContainer) ([]NodeMap, error) {
		seenLeft = left
		return []NodeMap{nodeMap(left, right, 0, 4, 1, 3)}, nil
	})

	o := newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmVFLib}, Collaborators{Exact: exact})
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Same(t, tgt, seenLeft)
	assert.Equal(t, []IndexPair{{3, 1}, {4, 0}}, res.Solutions[0].Pairs())
}

func TestRun_NoExtensionWhenSeedCoversAGraph(t *testing.T) {
	src, tgt := carbonChain(t, 2), carbonChain(t, 5)
	ext := echoExtension()

	o := newTestOrchestrator(t, src, tgt, Options{}, Collaborators{Exact: exactReturning([]int{0, 1, 1, 2}), Extension: ext})
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, ext.reqs)
	assert.False(t, res.Extended)
	assert.Equal(t, 2, res.BestSize)
}

// stateTrail lists the states a run moved through, in order.
func stateTrail(logger *testutil.MockLogger) []string {
	var trail []string
	for _, m := range logger.GetMessages() {
		if m.Message != "run state changed" {
			continue
		}
		for _, f := range m.Fields {
			if f.Key == "to" {
				trail = append(trail, f.Value.(string))
			}
		}
	}
	return trail
}

func TestRun_StateTrail(t *testing.T) {
	cases := []struct {
		name      string
		source    int
		target    int
		algorithm mcstypes.Algorithm
		exact     []int
		want      []string
	}{
		{
			name: "extended run", source: 4, target: 5, exact: []int{0, 0, 1, 1},
			want: []string{"seeded", "extension_needed", "extending", "consolidating", "done"},
		},
		{
			name: "seed covers a graph", source: 2, target: 5, exact: []int{0, 1, 1, 2},
			want: []string{"seeded", "done"},
		},
		{
			name: "vflib never extends", source: 4, target: 5, algorithm: mcstypes.AlgorithmVFLib, exact: []int{0, 0, 1, 1},
			want: []string{"seeded", "done"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := testutil.NewMockLogger()
			o := newTestOrchestrator(t, carbonChain(t, tc.source), carbonChain(t, tc.target),
				Options{Algorithm: tc.algorithm, ReactantCount: 1},
				Collaborators{Exact: exactReturning(tc.exact), Extension: echoExtension()},
				WithLogger(logger))
			_, err := o.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, stateTrail(logger))
		})
	}
}

func TestRun_SeedGenerationRunsWhileExtensionNeeded(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	var (
		o                    *Orchestrator
		atBuild, atExtension State
	)
	builder := &stubBuilder{graph: &CompatibilityGraph{Nodes: NewCompatibilityNodes(
		[3]int{0, 1, 1}, [3]int{1, 2, 2}, [3]int{2, 3, 3},
	)}}
	builder.onBuild = func() { atBuild = o.State() }
	ext := &stubExtension{fn: func(req *ExtensionRequest) (*ExtensionState, error) {
		atExtension = o.State()
		return &ExtensionState{Mappings: req.State.Mappings}, nil
	}}

	o = newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmMCSPlus, ReactantCount: 1},
		Collaborators{
			Exact:      exactReturning([]int{0, 1, 1, 2}),
			Builder:    builder,
			Enumerator: &stubEnumerator{cliques: [][]int{{1, 2, 3}}},
			Extension:  ext,
		})
	_, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateExtensionNeeded, atBuild)
	assert.Equal(t, StateExtending, atExtension)
	assert.Equal(t, StateDone, o.State())
}

func TestRun_NoExactMaps(t *testing.T) {
	src, tgt := graphOf(t, "N"), graphOf(t, "O")
	ext := echoExtension()

	o := newTestOrchestrator(t, src, tgt, Options{}, Collaborators{Exact: exactReturning(), Extension: ext})
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Solutions)
	assert.Equal(t, 0, res.BestSize)
	assert.Empty(t, ext.reqs)
}

// ─────────────────────────────────────────────────────────────────────────────
// Extension
// ─────────────────────────────────────────────────────────────────────────────

func TestRun_ExtensionOrientation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		query       bool
		opts        Options
		orientation Orientation
	}{
		{"counts unset", false, Options{}, OrientationReversed},
		{"more products", false, Options{ReactantCount: 1, ProductCount: 2}, OrientationReversed},
		{"equal counts", false, Options{ReactantCount: 2, ProductCount: 2}, OrientationReversed},
		{"more reactants", false, Options{ReactantCount: 2, ProductCount: 1}, OrientationNatural},
		{"query source", true, Options{}, OrientationNatural},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			src, tgt := carbonChain(t, 4), carbonChain(t, 5)
			if tc.query {
				src = src.AsQuery()
			}
			ext := echoExtension()
			rec := newCountingRecorder()

			o := newTestOrchestrator(t, src, tgt, tc.opts,
				Collaborators{Exact: exactReturning([]int{0, 2, 1, 3}), Extension: ext}, WithRecorder(rec))
			res, err := o.Run(context.Background())
			require.NoError(t, err)

			require.Len(t, ext.reqs, 1)
			req := ext.reqs[0]
			assert.Equal(t, tc.orientation, req.Orientation)
			if tc.orientation == OrientationNatural {
				assert.Same(t, src, req.GraphA)
				assert.Equal(t, map[int]int{0: 2, 1: 3}, req.Seed)
			} else {
				assert.Same(t, tgt, req.GraphA)
				assert.Equal(t, map[int]int{2: 0, 3: 1}, req.Seed)
			}

			// consolidation maps the extended pairs back to (source, target)
			assert.True(t, res.Extended)
			require.Len(t, res.Solutions, 1)
			assert.Equal(t, []IndexPair{{0, 2}, {1, 3}}, res.Solutions[0].Pairs())
			assert.Equal(t, 1, rec.extensions[tc.orientation.String()])
		})
	}
}

func TestRun_ExtensionChainsState(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	ext := echoExtension()

	o := newTestOrchestrator(t, src, tgt, Options{ReactantCount: 1},
		Collaborators{Exact: exactReturning([]int{0, 0, 1, 1}, []int{2, 3, 3, 4}), Extension: ext})
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, ext.reqs, 2)
	assert.Empty(t, ext.reqs[0].State.Mappings)
	assert.Equal(t, [][]int{{0, 0, 1, 1}}, ext.reqs[1].State.Mappings)
	assert.Equal(t, 2, res.Seeds)

	require.Len(t, res.Solutions, 2)
	assert.Equal(t, []IndexPair{{0, 0}, {1, 1}}, res.Solutions[0].Pairs())
	assert.Equal(t, []IndexPair{{2, 3}, {3, 4}}, res.Solutions[1].Pairs())
}

func TestRun_ExtensionGrowsTheBestTier(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	ext := &stubExtension{fn: func(req *ExtensionRequest) (*ExtensionState, error) {
		// GraphA is the target in the reversed orientation
		return &ExtensionState{Mappings: [][]int{{0, 0, 1, 1}, {1, 0, 2, 1, 3, 2, 4, 3}}, BestSize: 4}, nil
	}}

	o := newTestOrchestrator(t, src, tgt, Options{}, Collaborators{Exact: exactReturning([]int{0, 1, 1, 2}), Extension: ext})
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, res.BestSize)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, []IndexPair{{0, 1}, {1, 2}, {2, 3}, {3, 4}}, res.Solutions[0].Pairs())
}

func TestRun_EmptyExtensionClearsTheSet(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	ext := &stubExtension{fn: func(*ExtensionRequest) (*ExtensionState, error) { return nil, nil }}

	o := newTestOrchestrator(t, src, tgt, Options{}, Collaborators{Exact: exactReturning([]int{0, 1}), Extension: ext})
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Extended)
	assert.Empty(t, res.Solutions)
	assert.Equal(t, 0, o.BestSize())
}

func TestRun_InvalidExtendedPairFailsTheRun(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	ext := &stubExtension{fn: func(*ExtensionRequest) (*ExtensionState, error) {
		return &ExtensionState{Mappings: [][]int{{0, 0, 1, 1, 2, 2}, {0, 1, -1, 2}}}, nil
	}}
	logger := testutil.NewMockLogger()

	o := newTestOrchestrator(t, src, tgt, Options{}, Collaborators{Exact: exactReturning([]int{0, 1, 1, 2}), Extension: ext},
		WithLogger(logger))
	res, err := o.Run(context.Background())

	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeExtensionFailed))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidIndexPair))
	assert.Equal(t, StateFailed, o.State())
	assert.False(t, o.Extended())
	assert.True(t, logger.HasMessage("error", "matching run failed"))

	// the seeds accepted before consolidation are left untouched
	sols := o.Solutions()
	require.Len(t, sols, 1)
	assert.Equal(t, []IndexPair{{0, 1}, {1, 2}}, sols[0].Pairs())
}

func TestRun_CollaboratorFailures(t *testing.T) {
	boom := stderrors.New("boom")
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)

	t.Run("exact matcher", func(t *testing.T) {
		exact := &mockExactMatcher{}
		exact.On("Match", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

		o := newTestOrchestrator(t, src, tgt, Options{}, Collaborators{Exact: exact, Extension: echoExtension()})
		_, err := o.Run(context.Background())
		assert.True(t, errors.IsCode(err, errors.CodeCollaboratorFailure))
		assert.True(t, stderrors.Is(err, boom))
		assert.Equal(t, StateFailed, o.State())
	})

	t.Run("extension", func(t *testing.T) {
		ext := &stubExtension{fn: func(*ExtensionRequest) (*ExtensionState, error) { return nil, boom }}

		o := newTestOrchestrator(t, src, tgt, Options{}, Collaborators{Exact: exactReturning([]int{0, 0}), Extension: ext})
		_, err := o.Run(context.Background())
		assert.True(t, errors.IsCode(err, errors.CodeCollaboratorFailure))
		assert.Equal(t, StateFailed, o.State())
	})

	t.Run("seed strategy", func(t *testing.T) {
		collab := Collaborators{
			Exact:      exactReturning([]int{0, 0}),
			Builder:    &stubBuilder{err: boom},
			Enumerator: &stubEnumerator{},
			Extension:  echoExtension(),
		}
		o := newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmMCSPlus}, collab)
		_, err := o.Run(context.Background())
		assert.True(t, errors.IsCode(err, errors.CodeCollaboratorFailure))
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Seed strategies inside a run
// ─────────────────────────────────────────────────────────────────────────────

func TestRun_MCSPlusMergesCliqueSeeds(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	collab := Collaborators{
		Exact: exactReturning([]int{0, 1, 1, 2}),
		Builder: &stubBuilder{graph: &CompatibilityGraph{Nodes: NewCompatibilityNodes(
			[3]int{0, 1, 1}, [3]int{1, 2, 2}, [3]int{2, 3, 3}, [3]int{3, 0, 4},
		)}},
		// {1,2} duplicates the exact seed
		Enumerator: &stubEnumerator{cliques: [][]int{{1, 2}, {1, 2, 3}, {4}}},
	}
	ext := echoExtension()
	collab.Extension = ext

	o := newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmMCSPlus, ReactantCount: 1}, collab)
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, ext.reqs, 3)
	assert.Equal(t, map[int]int{0: 1, 1: 2, 2: 3}, ext.reqs[0].Seed)
	assert.Equal(t, map[int]int{0: 1, 1: 2}, ext.reqs[1].Seed)
	assert.Equal(t, map[int]int{3: 0}, ext.reqs[2].Seed)
	assert.Equal(t, 3, res.Seeds)
	assert.Equal(t, 3, res.BestSize)
}

func TestRun_CDKMCSUsesOverlapSeeds(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 6)
	reducer := &stubReducer{maps: []map[int]int{{5: 3, 4: 2, 3: 1}}}
	ext := echoExtension()
	collab := Collaborators{Exact: exactReturning([]int{0, 0}), Reducer: reducer, Extension: ext}

	o := newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmCDKMCS}, collab)
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Same(t, tgt, reducer.first)
	require.Len(t, ext.reqs, 2)
	assert.Equal(t, map[int]int{3: 1, 4: 2, 5: 3}, ext.reqs[0].Seed, "reversed seed is keyed by the target")
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, []IndexPair{{1, 3}, {2, 4}, {3, 5}}, res.Solutions[0].Pairs())
}

func TestRun_SeedStrategySkippedWhenNothingToGain(t *testing.T) {
	// only one symbol is shared, and the exact seed already covers it
	src, tgt := graphOf(t, "C", "N", "N"), graphOf(t, "C", "O", "O", "S")
	builder := &stubBuilder{}
	collab := Collaborators{
		Exact:      exactReturning([]int{0, 0}),
		Builder:    builder,
		Enumerator: &stubEnumerator{},
		Extension:  echoExtension(),
	}

	o := newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmMCSPlus}, collab)
	_, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Nil(t, builder.ac1, "builder must not be called")
}

// ─────────────────────────────────────────────────────────────────────────────
// Extension checks
// ─────────────────────────────────────────────────────────────────────────────

func TestExtensionRequiredFor(t *testing.T) {
	src, tgt := carbonChain(t, 3), carbonChain(t, 5)
	o := newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmVFLib}, Collaborators{Exact: exactReturning()})

	assert.True(t, o.ExtensionRequiredFor(nil))
	assert.True(t, o.ExtensionRequiredFor([]*Correspondence{corr(t, src, tgt, 0, 0, 1, 1)}))
	assert.False(t, o.ExtensionRequiredFor([]*Correspondence{corr(t, src, tgt, 0, 0, 1, 1, 2, 2)}))
}

func TestExtensionRequired_CountsCommonSymbols(t *testing.T) {
	src, tgt := graphOf(t, "C", "N", "O"), graphOf(t, "C", "C", "N")
	o := newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmVFLib},
		Collaborators{Exact: exactReturning([]int{0, 0}, []int{0, 1, 1, 2})})

	assert.True(t, o.ExtensionRequired(), "nothing accepted yet")

	_, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, o.BestSize())
	assert.False(t, o.ExtensionRequired(), "C and N are the only shared symbols")
}

// ─────────────────────────────────────────────────────────────────────────────
// Concurrency
// ─────────────────────────────────────────────────────────────────────────────

func TestRun_RepeatedRunsReset(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	o := newTestOrchestrator(t, src, tgt, Options{Algorithm: mcstypes.AlgorithmVFLib},
		Collaborators{Exact: exactReturning([]int{0, 0, 1, 1})})

	first, err := o.Run(context.Background())
	require.NoError(t, err)
	second, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	require.Len(t, second.Solutions, 1)
	assert.True(t, first.Solutions[0].Equals(second.Solutions[0]))
}

func TestRun_ConcurrentReaders(t *testing.T) {
	src, tgt := carbonChain(t, 6), carbonChain(t, 6)
	o := newTestOrchestrator(t, src, tgt, Options{ReactantCount: 1},
		Collaborators{Exact: exactReturning([]int{0, 0, 1, 1}, []int{2, 2, 3, 3}), Extension: echoExtension()})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := o.Run(context.Background())
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			for k := 0; k < 50; k++ {
				for _, s := range o.Solutions() {
					_ = s.Pairs()
				}
				_ = o.State()
				_ = o.BestSize()
				_ = o.ExtensionRequired()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, StateDone, o.State())
	assert.Equal(t, 2, o.BestSize())
	assert.Len(t, o.Solutions(), 2)
}

//Personal.AI order the ending
