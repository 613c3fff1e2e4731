// Package rgraph is the reference overlap-reduction ("UIT") collaborator.
// It builds the bond-pair resolution graph of two molecules, enumerates its
// maximal cliques, resolves each clique into an atom map and drops every map
// contained in another.
package rgraph

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/turtacn/KeyIP-MCS/internal/domain/mcs"
	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/common"
)

// EngineName labels this engine in logs and metrics.
const EngineName = "rgraph"

// Reducer implements mcs.OverlapReducer.
type Reducer struct {
	limits  common.SearchLimits
	logger  logging.Logger
	metrics common.EngineMetrics
}

// NewReducer creates a reducer.  A nil logger or metrics sink is replaced by
// a no-op.
func NewReducer(limits common.SearchLimits, logger logging.Logger, metrics common.EngineMetrics) *Reducer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopEngineMetrics()
	}
	return &Reducer{limits: limits.WithDefaults(), logger: logger.Named(EngineName), metrics: metrics}
}

// bondPair is one resolution-graph node.
type bondPair struct {
	first, second *molecule.Bond
}

// OverlapsAndReduce returns the non-redundant atom maps between first and
// second, keyed by first, largest first.
func (r *Reducer) OverlapsAndReduce(ctx context.Context, first, second *molecule.AtomContainer, p mcs.Predicates) ([]map[int]int, error) {
	start := time.Now()
	if first == nil || second == nil || first.AtomCount() == 0 || second.AtomCount() == 0 {
		return []map[int]int{}, nil
	}

	var maps []map[int]int
	if first.BondCount() == 0 || second.BondCount() == 0 {
		maps = atomMaps(first, second, p)
	} else {
		nodes := resolutionNodes(first, second, p)
		ug := simple.NewUndirectedGraph()
		for k := range nodes {
			ug.AddNode(simple.Node(int64(k)))
		}
		for a := range nodes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for b := a + 1; b < len(nodes); b++ {
				if compatiblePairs(first, second, nodes[a], nodes[b], p) {
					ug.SetEdge(simple.Edge{F: simple.Node(int64(a)), T: simple.Node(int64(b))})
				}
			}
		}
		for _, clique := range topo.BronKerbosch(ug) {
			pairs := make([]bondPair, len(clique))
			for i, n := range clique {
				pairs[i] = nodes[n.ID()]
			}
			if m := resolve(first, second, pairs, p); len(m) > 0 {
				maps = append(maps, m)
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	maps = reduce(maps)
	truncated := len(maps) > r.limits.MaxCliques
	if truncated {
		maps = maps[:r.limits.MaxCliques]
	}

	r.metrics.RecordSearch(ctx, &common.SearchMetricParams{
		Engine:     EngineName,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
		Results:    len(maps),
		Truncated:  truncated,
		Success:    true,
	})
	r.logger.Debug("overlaps reduced", logging.Int("maps", len(maps)), logging.Bool("truncated", truncated))
	return maps, nil
}

// atomMaps handles bond-free graphs: every compatible atom pair is a map.
func atomMaps(first, second *molecule.AtomContainer, p mcs.Predicates) []map[int]int {
	var out []map[int]int
	for i := 0; i < first.AtomCount(); i++ {
		for j := 0; j < second.AtomCount(); j++ {
			if common.AtomsCompatible(first.Atom(i), second.Atom(j), p) {
				out = append(out, map[int]int{i: j})
			}
		}
	}
	return out
}

// resolutionNodes pairs every compatible bond of first with every compatible
// bond of second.
func resolutionNodes(first, second *molecule.AtomContainer, p mcs.Predicates) []bondPair {
	var nodes []bondPair
	for _, x := range first.Bonds() {
		for _, y := range second.Bonds() {
			if !common.BondsCompatible(x, y, p) {
				continue
			}
			if endpointsCompatible(first, second, x, y, p) {
				nodes = append(nodes, bondPair{first: x, second: y})
			}
		}
	}
	return nodes
}

// endpointsCompatible reports whether x can be laid onto y in at least one
// direction.
func endpointsCompatible(first, second *molecule.AtomContainer, x, y *molecule.Bond, p mcs.Predicates) bool {
	ok := func(a, b int) bool { return common.AtomsCompatible(first.Atom(a), second.Atom(b), p) }
	return (ok(x.Begin, y.Begin) && ok(x.End, y.End)) || (ok(x.Begin, y.End) && ok(x.End, y.Begin))
}

// compatiblePairs joins two resolution nodes when their bonds are distinct
// and adjacency agrees on both sides, with compatible shared atoms.
func compatiblePairs(first, second *molecule.AtomContainer, a, b bondPair, p mcs.Predicates) bool {
	if a.first == b.first || a.second == b.second {
		return false
	}
	s1 := common.SharedAtom(a.first, b.first)
	s2 := common.SharedAtom(a.second, b.second)
	if (s1 == -1) != (s2 == -1) {
		return false
	}
	if s1 == -1 {
		return true
	}
	return common.AtomsCompatible(first.Atom(s1), second.Atom(s2), p)
}

// resolve turns a clique of bond pairs into an atom map.  Shared atoms are
// fixed first; the remaining endpoints follow the bond they belong to.
// Pairs that would break injectivity are skipped.
func resolve(first, second *molecule.AtomContainer, pairs []bondPair, p mcs.Predicates) map[int]int {
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].first.Index != pairs[b].first.Index {
			return pairs[a].first.Index < pairs[b].first.Index
		}
		return pairs[a].second.Index < pairs[b].second.Index
	})

	m := make(map[int]int)
	used := make(map[int]bool)
	put := func(a, b int) bool {
		if cur, ok := m[a]; ok {
			return cur == b
		}
		if used[b] {
			return false
		}
		m[a] = b
		used[b] = true
		return true
	}

	for i := range pairs {
		for j := i + 1; j < len(pairs); j++ {
			s1 := common.SharedAtom(pairs[i].first, pairs[j].first)
			if s1 == -1 {
				continue
			}
			put(s1, common.SharedAtom(pairs[i].second, pairs[j].second))
		}
	}

	for _, bp := range pairs {
		x, y := bp.first, bp.second
		if b, ok := m[x.Begin]; ok {
			if other := y.Other(b); other != -1 {
				put(x.End, other)
			}
			continue
		}
		if b, ok := m[x.End]; ok {
			if other := y.Other(b); other != -1 {
				put(x.Begin, other)
			}
			continue
		}
		if common.AtomsCompatible(first.Atom(x.Begin), second.Atom(y.Begin), p) &&
			common.AtomsCompatible(first.Atom(x.End), second.Atom(y.End), p) {
			put(x.Begin, y.Begin)
			put(x.End, y.End)
		} else {
			put(x.Begin, y.End)
			put(x.End, y.Begin)
		}
	}
	return m
}

// reduce removes duplicates and maps contained in a larger one, then orders
// the survivors by descending size and ascending content.
func reduce(maps []map[int]int) []map[int]int {
	sort.SliceStable(maps, func(a, b int) bool {
		if len(maps[a]) != len(maps[b]) {
			return len(maps[a]) > len(maps[b])
		}
		return lessMap(maps[a], maps[b])
	})
	out := make([]map[int]int, 0, len(maps))
	for _, m := range maps {
		redundant := false
		for _, kept := range out {
			if subset(m, kept) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, m)
		}
	}
	return out
}

func subset(m, of map[int]int) bool {
	if len(m) > len(of) {
		return false
	}
	for k, v := range m {
		if w, ok := of[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func lessMap(a, b map[int]int) bool {
	ka, kb := sortedKeys(a), sortedKeys(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		if ka[i] != kb[i] {
			return ka[i] < kb[i]
		}
		if a[ka[i]] != b[kb[i]] {
			return a[ka[i]] < b[kb[i]]
		}
	}
	return len(ka) < len(kb)
}

var _ mcs.OverlapReducer = (*Reducer)(nil)

//Personal.AI order the ending
