package mcsplus

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/turtacn/KeyIP-MCS/internal/domain/mcs"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/common"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
)

// Enumerator implements mcs.MaxCliqueEnumerator with Bron–Kerbosch over the
// union of c- and d-edges.  Only cliques of the maximum size are returned,
// each sorted ascending, at most MaxCliques of them.
type Enumerator struct {
	limits  common.SearchLimits
	logger  logging.Logger
	metrics common.EngineMetrics
}

// NewEnumerator creates an enumerator.  A nil logger or metrics sink is
// replaced by a no-op.
func NewEnumerator(limits common.SearchLimits, logger logging.Logger, metrics common.EngineMetrics) *Enumerator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopEngineMetrics()
	}
	return &Enumerator{limits: limits.WithDefaults(), logger: logger.Named(EngineName), metrics: metrics}
}

// MaxCliques returns the maximum cliques of g as lists of node ids.
func (e *Enumerator) MaxCliques(ctx context.Context, g *mcs.CompatibilityGraph) ([][]int, error) {
	start := time.Now()
	if g == nil || len(g.Nodes) == 0 {
		return [][]int{}, nil
	}
	if err := g.Nodes.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ug := simple.NewUndirectedGraph()
	known := make(map[int]bool, g.Nodes.Len())
	for k := 0; k < g.Nodes.Len(); k++ {
		_, _, id := g.Nodes.Triple(k)
		ug.AddNode(simple.Node(int64(id)))
		known[id] = true
	}
	for _, edges := range [][][2]int{g.CEdges, g.DEdges} {
		for _, edge := range edges {
			if !known[edge[0]] || !known[edge[1]] {
				return nil, errors.Newf(errors.CodeCompatibilityGraph, "edge %d-%d references an unknown node", edge[0], edge[1])
			}
			if edge[0] == edge[1] {
				continue
			}
			ug.SetEdge(simple.Edge{F: simple.Node(int64(edge[0])), T: simple.Node(int64(edge[1]))})
		}
	}

	best := 0
	var cliques [][]int
	for _, c := range topo.BronKerbosch(ug) {
		switch {
		case len(c) > best:
			best = len(c)
			cliques = cliques[:0]
		case len(c) < best:
			continue
		}
		ids := make([]int, len(c))
		for i, n := range c {
			ids[i] = int(n.ID())
		}
		sort.Ints(ids)
		cliques = append(cliques, ids)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// BronKerbosch order follows map iteration
	sort.Slice(cliques, func(a, b int) bool { return lessInts(cliques[a], cliques[b]) })
	truncated := len(cliques) > e.limits.MaxCliques
	if truncated {
		cliques = cliques[:e.limits.MaxCliques]
	}

	e.metrics.RecordSearch(ctx, &common.SearchMetricParams{
		Engine:     EngineName,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
		Results:    len(cliques),
		Truncated:  truncated,
		Success:    true,
	})
	e.logger.Debug("maximum cliques enumerated",
		logging.Int("cliques", len(cliques)),
		logging.Int("clique_size", best),
		logging.Bool("truncated", truncated),
	)
	return cliques, nil
}

func lessInts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

var _ mcs.MaxCliqueEnumerator = (*Enumerator)(nil)

//Personal.AI order the ending
