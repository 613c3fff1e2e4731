package mcs

import (
	"context"
	"sort"

	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

// Strategy names used in logs and metrics.
const (
	StrategyExact   = "exact"
	StrategyClique  = "clique"
	StrategyOverlap = "overlap"
)

// SeedGenerator produces seed correspondences with either the clique-based
// strategy or the overlap-reduction strategy.
type SeedGenerator struct {
	source     *molecule.AtomContainer
	target     *molecule.AtomContainer
	predicates Predicates
	builder    CompatibilityGraphBuilder
	enumerator MaxCliqueEnumerator
	reducer    OverlapReducer
	encoder    *Encoder
	logger     logging.Logger
	metrics    Recorder
}

// NewSeedGenerator binds a generator to source and target.  Query sources
// always match with QueryPredicates.
func NewSeedGenerator(source, target *molecule.AtomContainer, p Predicates, collab Collaborators, logger logging.Logger, metrics Recorder) *SeedGenerator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NoopRecorder()
	}
	return &SeedGenerator{
		source:     source,
		target:     target,
		predicates: effectivePredicates(source, p),
		builder:    collab.Builder,
		enumerator: collab.Enumerator,
		reducer:    collab.Reducer,
		encoder:    NewEncoder(source, target, logger, metrics),
		logger:     logger,
		metrics:    metrics,
	}
}

// Generate runs the strategy selected by algorithm.  Algorithms without a
// seed strategy yield an empty list.
func (g *SeedGenerator) Generate(ctx context.Context, algorithm mcstypes.Algorithm) ([]*Correspondence, error) {
	switch algorithm {
	case mcstypes.AlgorithmMCSPlus:
		return g.CliqueSeeds(ctx)
	case mcstypes.AlgorithmCDKMCS:
		return g.OverlapSeeds(ctx)
	default:
		return []*Correspondence{}, nil
	}
}

// CliqueSeeds runs the clique-based strategy.  A query source always stays
// on the left; otherwise the smaller graph goes left and the decoded pairs
// are swapped back.  Seeds come out largest clique first; ties keep the
// enumeration order.
func (g *SeedGenerator) CliqueSeeds(ctx context.Context) ([]*Correspondence, error) {
	if g.builder == nil || g.enumerator == nil {
		return nil, errors.New(errors.CodeInvalidParam, "clique strategy needs a compatibility graph builder and a clique enumerator")
	}

	ac1, ac2, exchanged := g.cliqueRoles()

	cg, err := g.builder.Build(ctx, ac1, ac2, g.predicates)
	if err != nil {
		return nil, errors.CollaboratorFailure(err, "compatibility graph builder")
	}
	if cg == nil {
		return []*Correspondence{}, nil
	}
	if err := cg.Nodes.Validate(); err != nil {
		return nil, err
	}

	raw, err := g.enumerator.MaxCliques(ctx, cg)
	if err != nil {
		return nil, errors.CollaboratorFailure(err, "max clique enumerator")
	}
	cliques := make([][]int, len(raw))
	copy(cliques, raw)
	sort.SliceStable(cliques, func(a, b int) bool { return len(cliques[a]) > len(cliques[b]) })

	seeds := make([]*Correspondence, 0, len(cliques))
	for _, clique := range cliques {
		pairs := DecodeClique(clique, cg.Nodes)
		c := g.encoder.EncodeIndexPairs(pairs, !exchanged, StrategyClique)
		if !c.IsEmpty() {
			seeds = append(seeds, c)
		}
	}

	g.metrics.RecordSeeds(StrategyClique, len(seeds))
	g.logger.Debug("clique seeds generated",
		logging.Int("cliques", len(cliques)),
		logging.Int("seeds", len(seeds)),
		logging.Bool("exchanged", exchanged),
	)
	return seeds, nil
}

// cliqueRoles picks (ac1, ac2) for the compatibility graph.
func (g *SeedGenerator) cliqueRoles() (*molecule.AtomContainer, *molecule.AtomContainer, bool) {
	switch g.source.Role {
	case molecule.RoleQuery:
		return g.source, g.target, false
	default:
		if g.source.AtomCount() < g.target.AtomCount() {
			return g.source, g.target, false
		}
		return g.target, g.source, true
	}
}

// OverlapSeeds runs the overlap-reduction strategy.  A query source keeps the
// target as the keyed side; otherwise the larger graph is keyed.  Raw maps are
// stably sorted by descending size before translation.
func (g *SeedGenerator) OverlapSeeds(ctx context.Context) ([]*Correspondence, error) {
	if g.reducer == nil {
		return nil, errors.New(errors.CodeInvalidParam, "overlap strategy needs an overlap reducer")
	}

	first, second, sourceKeyed := g.overlapRoles()

	raw, err := g.reducer.OverlapsAndReduce(ctx, first, second, g.predicates)
	if err != nil {
		return nil, errors.CollaboratorFailure(err, "overlap reducer")
	}

	sorted := make([]map[int]int, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(a, b int) bool { return len(sorted[a]) > len(sorted[b]) })

	seeds := make([]*Correspondence, 0, len(sorted))
	for _, m := range sorted {
		c := g.encoder.EncodeIndexMap(m, sourceKeyed, StrategyOverlap)
		if !c.IsEmpty() {
			seeds = append(seeds, c)
		}
	}

	g.metrics.RecordSeeds(StrategyOverlap, len(seeds))
	g.logger.Debug("overlap seeds generated",
		logging.Int("solutions", len(raw)),
		logging.Int("seeds", len(seeds)),
		logging.Bool("source_keyed", sourceKeyed),
	)
	return seeds, nil
}

// overlapRoles picks the (first, second) argument order for the reducer and
// reports whether the keys of its maps index the source graph.
func (g *SeedGenerator) overlapRoles() (*molecule.AtomContainer, *molecule.AtomContainer, bool) {
	switch g.source.Role {
	case molecule.RoleQuery:
		return g.target, g.source, false
	default:
		if g.source.AtomCount() > g.target.AtomCount() {
			return g.source, g.target, true
		}
		return g.target, g.source, false
	}
}

//Personal.AI order the ending
