package mcs

import (
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
)

// CompatibilityNodes is the flat compatibility-graph node list: consecutive
// (i, j, id) triples where i indexes the first graph, j the second and id is
// the node's unique clique identifier.
type CompatibilityNodes []int

// NewCompatibilityNodes flattens triples into a node list.
func NewCompatibilityNodes(triples ...[3]int) CompatibilityNodes {
	out := make(CompatibilityNodes, 0, 3*len(triples))
	for _, t := range triples {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

// Len returns the number of triples.
func (n CompatibilityNodes) Len() int { return len(n) / 3 }

// Triple returns the k-th triple.
func (n CompatibilityNodes) Triple(k int) (i, j, id int) {
	return n[3*k], n[3*k+1], n[3*k+2]
}

// Validate checks the stride and the uniqueness of the ids.
func (n CompatibilityNodes) Validate() error {
	if len(n)%3 != 0 {
		return errors.Newf(errors.CodeCompatibilityGraph, "node list length %d is not a multiple of 3", len(n))
	}
	seen := make(map[int]struct{}, n.Len())
	for k := 0; k < len(n); k += 3 {
		id := n[k+2]
		if _, dup := seen[id]; dup {
			return errors.Newf(errors.CodeCompatibilityGraph, "clique node id %d appears twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Lookup scans the list in stride-3 steps for the triple carrying id and
// returns its (i, j).  It returns (-1, -1) when id is absent.
func (n CompatibilityNodes) Lookup(id int) (int, int) {
	for k := 0; k+2 < len(n); k += 3 {
		if n[k+2] == id {
			return n[k], n[k+1]
		}
	}
	return -1, -1
}

// DecodeClique resolves each clique node id to its (i, j) pair, in clique
// order.  Unknown ids decode to (-1, -1).
func DecodeClique(clique []int, nodes CompatibilityNodes) []IndexPair {
	out := make([]IndexPair, len(clique))
	for k, id := range clique {
		i, j := nodes.Lookup(id)
		out[k] = IndexPair{Source: i, Target: j}
	}
	return out
}

//Personal.AI order the ending
