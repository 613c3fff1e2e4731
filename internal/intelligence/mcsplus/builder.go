// Package mcsplus provides the reference clique-based seed collaborators:
// a compatibility graph builder and a maximum clique enumerator.
package mcsplus

import (
	"context"

	"github.com/turtacn/KeyIP-MCS/internal/domain/mcs"
	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/common"
)

// EngineName labels these engines in logs and metrics.
const EngineName = "mcsplus"

// Builder implements mcs.CompatibilityGraphBuilder.
//
// Every compatible atom pair (i, j) becomes a node with a dense id starting
// at 1.  Two nodes with distinct atoms on both sides are joined by a c-edge
// when both atom pairs are bonded with compatible bonds, and by a d-edge when
// neither pair is bonded.
type Builder struct {
	logger logging.Logger
}

// NewBuilder creates a builder.
func NewBuilder(logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{logger: logger.Named(EngineName)}
}

// Build constructs the compatibility graph of ac1 × ac2.
func (b *Builder) Build(ctx context.Context, ac1, ac2 *molecule.AtomContainer, p mcs.Predicates) (*mcs.CompatibilityGraph, error) {
	g := &mcs.CompatibilityGraph{Nodes: mcs.CompatibilityNodes{}}
	if ac1 == nil || ac2 == nil {
		return g, nil
	}

	id := 0
	for i := 0; i < ac1.AtomCount(); i++ {
		for j := 0; j < ac2.AtomCount(); j++ {
			if common.AtomsCompatible(ac1.Atom(i), ac2.Atom(j), p) {
				id++
				g.Nodes = append(g.Nodes, i, j, id)
			}
		}
	}

	n := g.Nodes.Len()
	for a := 0; a < n; a++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		i1, j1, idA := g.Nodes.Triple(a)
		for c := a + 1; c < n; c++ {
			i2, j2, idC := g.Nodes.Triple(c)
			if i1 == i2 || j1 == j2 {
				continue
			}
			b1 := ac1.BondBetween(i1, i2)
			b2 := ac2.BondBetween(j1, j2)
			switch {
			case b1 != nil && b2 != nil:
				if common.BondsCompatible(b1, b2, p) {
					g.CEdges = append(g.CEdges, [2]int{idA, idC})
				}
			case b1 == nil && b2 == nil:
				g.DEdges = append(g.DEdges, [2]int{idA, idC})
			}
		}
	}

	b.logger.Debug("compatibility graph built",
		logging.Int("nodes", n),
		logging.Int("c_edges", len(g.CEdges)),
		logging.Int("d_edges", len(g.DEdges)),
	)
	return g, nil
}

var _ mcs.CompatibilityGraphBuilder = (*Builder)(nil)

//Personal.AI order the ending
