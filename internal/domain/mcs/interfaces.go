// Package mcs is the seed-generation and mapping-consolidation core of the
// maximum common subgraph search.  It picks a seed strategy, normalises which
// graph plays source and target, decodes raw solver output into canonical
// index correspondences, deduplicates and ranks them, and decides when seeds
// must be grown by the extension algorithm.
//
// The searches themselves live behind the collaborator interfaces declared
// here; reference implementations are under internal/intelligence.
package mcs

import (
	"context"

	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Matching predicates
// ─────────────────────────────────────────────────────────────────────────────

// Predicates select which attributes must agree for two atoms or bonds to be
// considered compatible.
type Predicates struct {
	BondMatch     bool `json:"bond_match"`
	RingMatch     bool `json:"ring_match"`
	AtomTypeMatch bool `json:"atom_type_match"`
}

// QueryPredicates are forced whenever the source graph is a query.
var QueryPredicates = Predicates{BondMatch: true, RingMatch: true, AtomTypeMatch: true}

// effectivePredicates returns the predicates a run uses for source.
func effectivePredicates(source *molecule.AtomContainer, p Predicates) Predicates {
	switch source.Role {
	case molecule.RoleQuery:
		return QueryPredicates
	case molecule.RoleConcrete:
		return p
	default:
		return p
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Collaborator payloads
// ─────────────────────────────────────────────────────────────────────────────

// NodePair is one raw atom-level pair produced by the exact matcher.  Left
// belongs to the first graph passed to the matcher, Right to the second.
type NodePair struct {
	Left  *molecule.Atom
	Right *molecule.Atom
}

// NodeMap is one candidate partial mapping from the exact matcher.
type NodeMap []NodePair

// CompatibilityGraph is the output of a CompatibilityGraphBuilder.  Nodes is
// the flat (i, j, id) triple list; edges are pairs of node ids.
type CompatibilityGraph struct {
	Nodes  CompatibilityNodes
	CEdges [][2]int
	DEdges [][2]int
}

// Orientation records which graph played the first role during extension.
type Orientation int

const (
	// OrientationNatural extends source→target.
	OrientationNatural Orientation = iota
	// OrientationReversed extends target→source with the seed inverted.
	OrientationReversed
)

// String implements fmt.Stringer.
func (o Orientation) String() string {
	switch o {
	case OrientationNatural:
		return "natural"
	case OrientationReversed:
		return "reversed"
	default:
		return "unknown"
	}
}

// SourceOnLeft reports whether the first element of each extended pair
// indexes the source graph.
func (o Orientation) SourceOnLeft() bool { return o == OrientationNatural }

// ExtensionState is the accumulated result of a chain of extension calls.
// Mappings holds flat [a0, b0, a1, b1, ...] index sequences where a indexes
// GraphA of the request that produced them.
type ExtensionState struct {
	Mappings    [][]int
	BestSize    int
	Orientation Orientation
}

// Clone returns a deep copy; nil stays nil.
func (s *ExtensionState) Clone() *ExtensionState {
	if s == nil {
		return nil
	}
	out := &ExtensionState{
		Mappings:    make([][]int, len(s.Mappings)),
		BestSize:    s.BestSize,
		Orientation: s.Orientation,
	}
	for i, m := range s.Mappings {
		out.Mappings[i] = append([]int(nil), m...)
	}
	return out
}

// ExtensionRequest asks the extension algorithm to grow Seed.  Seed maps
// GraphA indices to GraphB indices; State is the accumulated state of the
// previous call in the chain, empty for the first seed.
type ExtensionRequest struct {
	GraphA      *molecule.AtomContainer
	GraphB      *molecule.AtomContainer
	Seed        map[int]int
	State       *ExtensionState
	Predicates  Predicates
	Orientation Orientation
}

// ─────────────────────────────────────────────────────────────────────────────
// Collaborator interfaces
// ─────────────────────────────────────────────────────────────────────────────

// ExactMatcher enumerates candidate partial node-to-node maps between left
// and right.
type ExactMatcher interface {
	Match(ctx context.Context, left, right *molecule.AtomContainer, p Predicates) ([]NodeMap, error)
}

// CompatibilityGraphBuilder builds the compatibility graph of ac1 × ac2.
type CompatibilityGraphBuilder interface {
	Build(ctx context.Context, ac1, ac2 *molecule.AtomContainer, p Predicates) (*CompatibilityGraph, error)
}

// MaxCliqueEnumerator returns the cliques of a compatibility graph, each as
// a list of node ids, in arbitrary order.
type MaxCliqueEnumerator interface {
	MaxCliques(ctx context.Context, g *CompatibilityGraph) ([][]int, error)
}

// OverlapReducer is the overlap-reduction ("UIT") solver.  Every returned
// map is keyed by indices of first and valued by indices of second.
type OverlapReducer interface {
	OverlapsAndReduce(ctx context.Context, first, second *molecule.AtomContainer, p Predicates) ([]map[int]int, error)
}

// ExtensionAlgorithm grows a seed mapping into larger consistent mappings.
type ExtensionAlgorithm interface {
	Extend(ctx context.Context, req *ExtensionRequest) (*ExtensionState, error)
}

// Collaborators bundles the engines one orchestrator runs against.
type Collaborators struct {
	Exact      ExactMatcher
	Builder    CompatibilityGraphBuilder
	Enumerator MaxCliqueEnumerator
	Reducer    OverlapReducer
	Extension  ExtensionAlgorithm
}

// ─────────────────────────────────────────────────────────────────────────────
// Telemetry
// ─────────────────────────────────────────────────────────────────────────────

// Recorder receives run telemetry.  The Prometheus-backed implementation
// lives in infrastructure/monitoring/prometheus.
type Recorder interface {
	RecordSeeds(strategy string, count int)
	RecordDroppedPair(strategy string)
	RecordExtension(orientation string)
}

type noopRecorder struct{}

func (noopRecorder) RecordSeeds(string, int)  {}
func (noopRecorder) RecordDroppedPair(string) {}
func (noopRecorder) RecordExtension(string)   {}

// NoopRecorder returns a Recorder that discards everything.
func NoopRecorder() Recorder { return noopRecorder{} }

//Personal.AI order the ending
