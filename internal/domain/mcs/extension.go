package mcs

import (
	"context"
	"fmt"

	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
)

// maxSize returns the size of the largest correspondence in seeds.
func maxSize(seeds []*Correspondence) int {
	m := 0
	for _, s := range seeds {
		if s.Size() > m {
			m = s.Size()
		}
	}
	return m
}

// ExtensionRequiredFor reports whether seeds can still grow: both graphs have
// more atoms than the largest seed.
func (o *Orchestrator) ExtensionRequiredFor(seeds []*Correspondence) bool {
	m := maxSize(seeds)
	return o.source.AtomCount() > m && o.target.AtomCount() > m
}

// ExtensionRequired reports whether the accepted set is smaller than the
// number of atom symbols the two graphs share (multiset intersection).
func (o *Orchestrator) ExtensionRequired() bool {
	return molecule.CountCommonSymbols(o.source, o.target) > o.ranker.BestSize()
}

// orientation decides how a seed is extended.  A query source, or a
// reactant count above the product count, keeps the natural source→target
// direction; everything else extends target→source.
func (o *Orchestrator) orientation() Orientation {
	switch o.source.Role {
	case molecule.RoleQuery:
		return OrientationNatural
	default:
		if o.opts.ReactantCount > o.opts.ProductCount {
			return OrientationNatural
		}
		return OrientationReversed
	}
}

// extensionRequest builds the request for one seed under orientation.
func (o *Orchestrator) extensionRequest(seed *Correspondence, state *ExtensionState, orientation Orientation) *ExtensionRequest {
	req := &ExtensionRequest{
		State:       state.Clone(),
		Predicates:  o.predicates,
		Orientation: orientation,
	}
	switch orientation {
	case OrientationNatural:
		req.GraphA, req.GraphB = o.source, o.target
		req.Seed = seed.IndexMap()
	case OrientationReversed:
		req.GraphA, req.GraphB = o.target, o.source
		req.Seed = make(map[int]int, seed.Size())
		for _, p := range seed.Pairs() {
			req.Seed[p.Target] = p.Source
		}
	}
	return req
}

// extend runs the extension algorithm once per seed, chaining the
// accumulated state.  The returned state is tagged with the orientation of
// the call that produced it; an empty batch yields an empty natural state.
func (o *Orchestrator) extend(ctx context.Context, seeds []*Correspondence, log logging.Logger) (*ExtensionState, error) {
	state := &ExtensionState{Orientation: OrientationNatural}

	for i, seed := range seeds {
		orientation := o.orientation()
		req := o.extensionRequest(seed, state, orientation)

		next, err := o.collab.Extension.Extend(ctx, req)
		if err != nil {
			return nil, errors.CollaboratorFailure(err, "extension algorithm").
				WithDetail(fmt.Sprintf("seed=%d orientation=%s", i, orientation))
		}
		if next == nil {
			next = &ExtensionState{}
		}
		next.Orientation = orientation
		state = next

		o.metrics.RecordExtension(orientation.String())
		log.Debug("seed extended",
			logging.Int("seed", i),
			logging.Int("seed_size", seed.Size()),
			logging.String("orientation", orientation.String()),
			logging.Int("best_size", state.BestSize),
			logging.Int("mappings", len(state.Mappings)),
		)
	}
	return state, nil
}

// consolidate translates every extended mapping and replaces the accepted
// set with its maximal tier.  An unresolvable pair fails the whole batch and
// leaves the accepted set untouched.
func (o *Orchestrator) consolidate(state *ExtensionState) error {
	if state == nil {
		state = &ExtensionState{}
	}
	sourceOnLeft := state.Orientation.SourceOnLeft()

	candidates := make([]*Correspondence, 0, len(state.Mappings))
	for i, flat := range state.Mappings {
		c, err := o.encoder.EncodeFlat(flat, sourceOnLeft)
		if err != nil {
			return errors.Wrap(err, errors.CodeExtensionFailed, "consolidating extended mappings").
				WithDetail(fmt.Sprintf("mapping=%d orientation=%s", i, state.Orientation))
		}
		candidates = append(candidates, c)
	}
	o.ranker.Replace(candidates)
	return nil
}

//Personal.AI order the ending
