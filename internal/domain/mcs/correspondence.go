package mcs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emirpasic/gods/maps/treebidimap"
	"github.com/emirpasic/gods/utils"

	"github.com/turtacn/KeyIP-MCS/internal/domain/molecule"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Correspondence
// ─────────────────────────────────────────────────────────────────────────────

// IndexPair is one canonical (source, target) atom index pair.
type IndexPair struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// AtomPair is the atom-level view of an IndexPair.
type AtomPair struct {
	Source *molecule.Atom
	Target *molecule.Atom
}

// Correspondence is a bijective partial mapping from source atom indices to
// target atom indices.  Keys and values are unique and always >= 0; pairs are
// iterated in ascending source order.  A Correspondence is not safe for
// concurrent mutation; the Ranker hands out clones.
type Correspondence struct {
	source *molecule.AtomContainer
	target *molecule.AtomContainer
	index  *treebidimap.Map
}

// NewCorrespondence returns an empty correspondence between source and target.
func NewCorrespondence(source, target *molecule.AtomContainer) *Correspondence {
	return &Correspondence{
		source: source,
		target: target,
		index:  treebidimap.NewWith(utils.IntComparator, utils.IntComparator),
	}
}

// Source returns the source graph.
func (c *Correspondence) Source() *molecule.AtomContainer { return c.source }

// Target returns the target graph.
func (c *Correspondence) Target() *molecule.AtomContainer { return c.target }

// Put inserts source→target.  Re-inserting an identical pair is a no-op.  A
// pair with a negative index, or one that would break bijectivity, is
// rejected and the correspondence is left unchanged.
func (c *Correspondence) Put(source, target int) error {
	if source < 0 || target < 0 {
		return errors.InvalidIndexPair(source, target)
	}
	if v, ok := c.index.Get(source); ok {
		if v.(int) == target {
			return nil
		}
		return errors.Newf(errors.CodeMappingConflict, "source atom %d already mapped to %d", source, v.(int)).
			WithDetail(fmt.Sprintf("source=%d target=%d", source, target))
	}
	if k, ok := c.index.GetKey(target); ok {
		return errors.Newf(errors.CodeMappingConflict, "target atom %d already mapped from %d", target, k.(int)).
			WithDetail(fmt.Sprintf("source=%d target=%d", source, target))
	}
	c.index.Put(source, target)
	return nil
}

// Get returns the target index mapped from source.
func (c *Correspondence) Get(source int) (int, bool) {
	v, ok := c.index.Get(source)
	if !ok {
		return -1, false
	}
	return v.(int), true
}

// GetSource returns the source index mapped to target.
func (c *Correspondence) GetSource(target int) (int, bool) {
	k, ok := c.index.GetKey(target)
	if !ok {
		return -1, false
	}
	return k.(int), true
}

// Size returns the number of pairs.
func (c *Correspondence) Size() int {
	if c == nil {
		return 0
	}
	return c.index.Size()
}

// IsEmpty reports whether the correspondence holds no pairs.
func (c *Correspondence) IsEmpty() bool { return c.Size() == 0 }

// Pairs returns the index pairs in ascending source order.
func (c *Correspondence) Pairs() []IndexPair {
	out := make([]IndexPair, 0, c.index.Size())
	it := c.index.Iterator()
	for it.Next() {
		out = append(out, IndexPair{Source: it.Key().(int), Target: it.Value().(int)})
	}
	return out
}

// IndexMap returns a fresh map copy of the pairs.
func (c *Correspondence) IndexMap() map[int]int {
	out := make(map[int]int, c.index.Size())
	it := c.index.Iterator()
	for it.Next() {
		out[it.Key().(int)] = it.Value().(int)
	}
	return out
}

// AtomPairs is the object-level view of the mapping.  It is derived from the
// index pairs on every call and plays no part in equality.
func (c *Correspondence) AtomPairs() []AtomPair {
	pairs := c.Pairs()
	out := make([]AtomPair, len(pairs))
	for i, p := range pairs {
		out[i] = AtomPair{Source: c.source.Atom(p.Source), Target: c.target.Atom(p.Target)}
	}
	return out
}

// Equals reports whether c and other hold exactly the same index pairs.
func (c *Correspondence) Equals(other *Correspondence) bool {
	if c == nil || other == nil {
		return c == nil && other == nil
	}
	if c.index.Size() != other.index.Size() {
		return false
	}
	it := c.index.Iterator()
	for it.Next() {
		v, ok := other.index.Get(it.Key())
		if !ok || v.(int) != it.Value().(int) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy sharing only the (immutable) graphs.
func (c *Correspondence) Clone() *Correspondence {
	out := NewCorrespondence(c.source, c.target)
	it := c.index.Iterator()
	for it.Next() {
		out.index.Put(it.Key(), it.Value())
	}
	return out
}

// Reversed returns the correspondence with graphs and indices swapped.
func (c *Correspondence) Reversed() *Correspondence {
	out := NewCorrespondence(c.target, c.source)
	it := c.index.Iterator()
	for it.Next() {
		out.index.Put(it.Value(), it.Key())
	}
	return out
}

// String renders "{0:1, 1:2}".
func (c *Correspondence) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range c.Pairs() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d:%d", p.Source, p.Target)
	}
	b.WriteByte('}')
	return b.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Encoder
// ─────────────────────────────────────────────────────────────────────────────

// Encoder canonicalises raw solver pairs into (source, target) index pairs.
// A raw pair comes with a sourceOnLeft flag telling whether its first element
// refers to the source graph; either way the output is (source, target).
type Encoder struct {
	source  *molecule.AtomContainer
	target  *molecule.AtomContainer
	logger  logging.Logger
	metrics Recorder
}

// NewEncoder binds an encoder to one source/target pair.
func NewEncoder(source, target *molecule.AtomContainer, logger logging.Logger, metrics Recorder) *Encoder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NoopRecorder()
	}
	return &Encoder{source: source, target: target, logger: logger, metrics: metrics}
}

// Encode resolves one raw index pair.  ok is false when either side does not
// address an atom of its graph, in which case the returned pair carries -1 on
// the unresolved side.
func (e *Encoder) Encode(left, right int, sourceOnLeft bool) (IndexPair, bool) {
	var p IndexPair
	if sourceOnLeft {
		p = IndexPair{Source: e.source.ResolveIndex(left), Target: e.target.ResolveIndex(right)}
	} else {
		p = IndexPair{Source: e.source.ResolveIndex(right), Target: e.target.ResolveIndex(left)}
	}
	return p, p.Source != -1 && p.Target != -1
}

// EncodeAtoms resolves one raw atom-level pair by atom identity.
func (e *Encoder) EncodeAtoms(left, right *molecule.Atom, sourceOnLeft bool) (IndexPair, bool) {
	var p IndexPair
	if sourceOnLeft {
		p = IndexPair{Source: e.source.IndexOf(left), Target: e.target.IndexOf(right)}
	} else {
		p = IndexPair{Source: e.source.IndexOf(right), Target: e.target.IndexOf(left)}
	}
	return p, p.Source != -1 && p.Target != -1
}

// put inserts p into c, logging and dropping it when it is unusable.
func (e *Encoder) put(c *Correspondence, p IndexPair, ok bool, strategy string) {
	if !ok {
		e.drop(p, strategy, errors.InvalidIndexPair(p.Source, p.Target))
		return
	}
	if err := c.Put(p.Source, p.Target); err != nil {
		e.drop(p, strategy, err)
	}
}

func (e *Encoder) drop(p IndexPair, strategy string, err error) {
	e.metrics.RecordDroppedPair(strategy)
	e.logger.Warn("dropped invalid index pair",
		logging.Strategy(strategy),
		logging.IndexPair(p.Source, p.Target),
		logging.Err(err),
	)
}

// EncodeIndexMap translates a raw index map.  Keys are visited in ascending
// order; unusable pairs are logged and dropped.
func (e *Encoder) EncodeIndexMap(raw map[int]int, sourceOnLeft bool, strategy string) *Correspondence {
	keys := make([]int, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	c := NewCorrespondence(e.source, e.target)
	for _, k := range keys {
		p, ok := e.Encode(k, raw[k], sourceOnLeft)
		e.put(c, p, ok, strategy)
	}
	return c
}

// EncodeIndexPairs translates an ordered list of raw index pairs.
func (e *Encoder) EncodeIndexPairs(raw []IndexPair, sourceOnLeft bool, strategy string) *Correspondence {
	c := NewCorrespondence(e.source, e.target)
	for _, r := range raw {
		p, ok := e.Encode(r.Source, r.Target, sourceOnLeft)
		e.put(c, p, ok, strategy)
	}
	return c
}

// EncodeNodeMap translates an atom-level map from the exact matcher.
func (e *Encoder) EncodeNodeMap(raw NodeMap, sourceOnLeft bool, strategy string) *Correspondence {
	c := NewCorrespondence(e.source, e.target)
	for _, np := range raw {
		p, ok := e.EncodeAtoms(np.Left, np.Right, sourceOnLeft)
		e.put(c, p, ok, strategy)
	}
	return c
}

// EncodeFlat translates one flat [a0, b0, a1, b1, ...] extension mapping.
// Unlike the seed paths an unresolvable or conflicting pair is an error.
func (e *Encoder) EncodeFlat(flat []int, sourceOnLeft bool) (*Correspondence, error) {
	if len(flat)%2 != 0 {
		return nil, errors.Newf(errors.CodeExtensionFailed, "flat mapping has odd length %d", len(flat))
	}
	c := NewCorrespondence(e.source, e.target)
	for i := 0; i < len(flat); i += 2 {
		p, ok := e.Encode(flat[i], flat[i+1], sourceOnLeft)
		if !ok {
			return nil, errors.InvalidIndexPair(p.Source, p.Target)
		}
		if err := c.Put(p.Source, p.Target); err != nil {
			return nil, err
		}
	}
	return c, nil
}

//Personal.AI order the ending
