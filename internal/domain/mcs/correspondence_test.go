package mcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-MCS/internal/testutil"
	"github.com/turtacn/KeyIP-MCS/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Correspondence
// ─────────────────────────────────────────────────────────────────────────────

func TestCorrespondence_PutAndGet(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	c := NewCorrespondence(src, tgt)

	require.NoError(t, c.Put(2, 4))
	require.NoError(t, c.Put(0, 1))
	require.NoError(t, c.Put(0, 1), "identical pair is a no-op")

	assert.Equal(t, 2, c.Size())
	v, ok := c.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	k, ok := c.GetSource(1)
	assert.True(t, ok)
	assert.Equal(t, 0, k)
	_, ok = c.Get(3)
	assert.False(t, ok)
	assert.Same(t, src, c.Source())
	assert.Same(t, tgt, c.Target())
}

func TestCorrespondence_PutRejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		src, tgt int
		code     errors.ErrorCode
	}{
		{"negative source", -1, 3, errors.CodeInvalidIndexPair},
		{"negative target", 2, -1, errors.CodeInvalidIndexPair},
		{"source already mapped", 0, 3, errors.CodeMappingConflict},
		{"target already used", 1, 1, errors.CodeMappingConflict},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := corr(t, carbonChain(t, 4), carbonChain(t, 5), 0, 1)
			err := c.Put(tc.src, tc.tgt)
			assert.True(t, errors.IsCode(err, tc.code), "got %v", err)
			assert.Equal(t, 1, c.Size(), "rejected pair must not be inserted")
		})
	}
}

func TestCorrespondence_PairsAreSourceOrdered(t *testing.T) {
	c := corr(t, carbonChain(t, 4), carbonChain(t, 5), 3, 0, 1, 4, 2, 2)
	assert.Equal(t, []IndexPair{{1, 4}, {2, 2}, {3, 0}}, c.Pairs())
	assert.Equal(t, map[int]int{1: 4, 2: 2, 3: 0}, c.IndexMap())
	assert.Equal(t, "{1:4, 2:2, 3:0}", c.String())
}

func TestCorrespondence_EqualsUsesIndexPairsOnly(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	a := corr(t, src, tgt, 0, 1, 1, 2)
	b := corr(t, src, tgt, 1, 2, 0, 1)
	c := corr(t, src, tgt, 0, 1, 1, 3)
	d := corr(t, src, tgt, 0, 1)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(d))
	assert.False(t, a.Equals(nil))

	var n1, n2 *Correspondence
	assert.True(t, n1.Equals(n2))
}

func TestCorrespondence_CloneIsDetached(t *testing.T) {
	a := corr(t, carbonChain(t, 4), carbonChain(t, 5), 0, 1)
	b := a.Clone()
	require.NoError(t, b.Put(1, 2))

	assert.Equal(t, 1, a.Size())
	assert.Equal(t, 2, b.Size())
}

func TestCorrespondence_Reversed(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 5)
	r := corr(t, src, tgt, 0, 3, 2, 1).Reversed()

	assert.Same(t, tgt, r.Source())
	assert.Same(t, src, r.Target())
	assert.Equal(t, []IndexPair{{1, 2}, {3, 0}}, r.Pairs())
}

func TestCorrespondence_AtomPairs(t *testing.T) {
	src, tgt := graphOf(t, "C", "N"), graphOf(t, "N", "C")
	pairs := corr(t, src, tgt, 1, 0).AtomPairs()

	require.Len(t, pairs, 1)
	assert.Same(t, src.Atom(1), pairs[0].Source)
	assert.Same(t, tgt.Atom(0), pairs[0].Target)
}

// ─────────────────────────────────────────────────────────────────────────────
// Encoder
// ─────────────────────────────────────────────────────────────────────────────

func TestEncoder_CanonicalOrientation(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 6)
	e := NewEncoder(src, tgt, nil, nil)

	for s := 0; s < src.AtomCount(); s++ {
		for tg := 0; tg < tgt.AtomCount(); tg++ {
			natural, ok1 := e.Encode(s, tg, true)
			swapped, ok2 := e.Encode(tg, s, false)
			require.True(t, ok1)
			require.True(t, ok2)
			assert.Equal(t, IndexPair{Source: s, Target: tg}, natural)
			assert.Equal(t, natural, swapped)
		}
	}
}

func TestEncoder_EncodeAtomsByIdentity(t *testing.T) {
	src, tgt := carbonChain(t, 3), carbonChain(t, 3)
	e := NewEncoder(src, tgt, nil, nil)

	p, ok := e.EncodeAtoms(tgt.Atom(2), src.Atom(0), false)
	assert.True(t, ok)
	assert.Equal(t, IndexPair{Source: 0, Target: 2}, p)

	// an atom of the wrong graph does not resolve
	p, ok = e.EncodeAtoms(tgt.Atom(0), tgt.Atom(1), true)
	assert.False(t, ok)
	assert.Equal(t, -1, p.Source)
}

func TestEncoder_SoftDropLogsAndContinues(t *testing.T) {
	src, tgt := carbonChain(t, 3), carbonChain(t, 4)
	logger := testutil.NewMockLogger()
	rec := newCountingRecorder()
	e := NewEncoder(src, tgt, logger, rec)

	c := e.EncodeIndexMap(map[int]int{0: 1, 1: -1, 2: 9}, true, StrategyOverlap)

	assert.Equal(t, []IndexPair{{0, 1}}, c.Pairs())
	assert.Equal(t, 2, logger.Count("warn", "dropped invalid index pair"))
	assert.Equal(t, 2, rec.dropped[StrategyOverlap])
	for _, p := range c.Pairs() {
		assert.GreaterOrEqual(t, p.Source, 0)
		assert.GreaterOrEqual(t, p.Target, 0)
	}
}

func TestEncoder_SoftDropOnConflict(t *testing.T) {
	src, tgt := carbonChain(t, 3), carbonChain(t, 3)
	logger := testutil.NewMockLogger()
	e := NewEncoder(src, tgt, logger, nil)

	c := e.EncodeIndexPairs([]IndexPair{{0, 0}, {1, 0}, {2, 2}}, true, StrategyClique)

	assert.Equal(t, []IndexPair{{0, 0}, {2, 2}}, c.Pairs())
	assert.Equal(t, 1, logger.Count("warn", "dropped invalid index pair"))
}

func TestEncoder_EncodeNodeMap(t *testing.T) {
	src, tgt := carbonChain(t, 3), carbonChain(t, 4)
	e := NewEncoder(src, tgt, nil, nil)

	c := e.EncodeNodeMap(nodeMap(tgt, src, 3, 0, 2, 1), false, StrategyExact)
	assert.Equal(t, []IndexPair{{0, 3}, {1, 2}}, c.Pairs())
}

func TestEncoder_EncodeFlat(t *testing.T) {
	src, tgt := carbonChain(t, 3), carbonChain(t, 4)
	e := NewEncoder(src, tgt, nil, nil)

	c, err := e.EncodeFlat([]int{0, 3, 1, 2}, true)
	require.NoError(t, err)
	assert.Equal(t, []IndexPair{{0, 3}, {1, 2}}, c.Pairs())

	c, err = e.EncodeFlat([]int{3, 0, 2, 1}, false)
	require.NoError(t, err)
	assert.Equal(t, []IndexPair{{0, 3}, {1, 2}}, c.Pairs())

	_, err = e.EncodeFlat([]int{0, -1}, true)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidIndexPair))

	_, err = e.EncodeFlat([]int{0, 1, 2}, true)
	assert.True(t, errors.IsCode(err, errors.CodeExtensionFailed))

	_, err = e.EncodeFlat([]int{0, 1, 1, 1}, true)
	assert.True(t, errors.IsCode(err, errors.CodeMappingConflict))
}

//Personal.AI order the ending
