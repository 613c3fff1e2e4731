package mcs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasClique(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 4)
	big := corr(t, src, tgt, 0, 0, 1, 1, 2, 2)
	other := corr(t, src, tgt, 1, 1, 2, 2, 3, 3)
	small := corr(t, src, tgt, 0, 0)

	assert.False(t, HasClique(other, []*Correspondence{big}))
	assert.True(t, HasClique(small, []*Correspondence{big}), "smaller than an accepted member")
	assert.True(t, HasClique(big.Clone(), []*Correspondence{big}), "equal to an accepted member")
	assert.False(t, HasClique(small, nil))
}

func TestIsCliquePresent_IgnoresSize(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 4)
	big := corr(t, src, tgt, 0, 0, 1, 1, 2, 2)
	small := corr(t, src, tgt, 0, 0)

	assert.False(t, IsCliquePresent(small, []*Correspondence{big}))
	assert.True(t, IsCliquePresent(small.Clone(), []*Correspondence{big, small}))
}

func TestSortBySizeDesc_IsStable(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 4)
	a := corr(t, src, tgt, 0, 0)
	b := corr(t, src, tgt, 0, 1, 1, 2)
	c := corr(t, src, tgt, 3, 3)
	d := corr(t, src, tgt, 1, 0, 2, 1)

	seeds := []*Correspondence{a, b, c, d}
	SortBySizeDesc(seeds)

	assert.Equal(t, []*Correspondence{b, d, a, c}, seeds)
}

func TestRanker_Offer(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 4)
	r := NewRanker()

	assert.False(t, r.Offer(NewCorrespondence(src, tgt)), "empty is rejected")
	assert.Equal(t, 0, r.BestSize())

	assert.True(t, r.Offer(corr(t, src, tgt, 0, 0, 1, 1)))
	assert.True(t, r.Offer(corr(t, src, tgt, 2, 2, 3, 3)))
	assert.False(t, r.Offer(corr(t, src, tgt, 1, 1, 0, 0)), "duplicate")
	assert.False(t, r.Offer(corr(t, src, tgt, 3, 2)), "smaller")
	assert.Equal(t, 2, r.Len())

	assert.True(t, r.Offer(corr(t, src, tgt, 0, 0, 1, 1, 2, 2)), "larger restarts the set")
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 3, r.BestSize())

	for _, c := range r.Snapshot() {
		assert.Equal(t, r.BestSize(), c.Size())
	}
}

func TestRanker_SnapshotIsDeepCopy(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 4)
	r := NewRanker()
	offered := corr(t, src, tgt, 0, 0)
	require.True(t, r.Offer(offered))

	// mutating the offered value does not reach the ranker
	require.NoError(t, offered.Put(1, 1))
	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 1, snap[0].Size())

	require.NoError(t, snap[0].Put(2, 2))
	assert.Equal(t, 1, r.Snapshot()[0].Size())
}

func TestRanker_Replace(t *testing.T) {
	src, tgt := carbonChain(t, 4), carbonChain(t, 4)
	r := NewRanker()
	require.True(t, r.Offer(corr(t, src, tgt, 0, 0, 1, 1, 2, 2, 3, 3)))

	n := r.Replace([]*Correspondence{
		corr(t, src, tgt, 0, 1),
		corr(t, src, tgt, 0, 0, 1, 1),
		NewCorrespondence(src, tgt),
		corr(t, src, tgt, 1, 1, 0, 0),
		corr(t, src, tgt, 2, 3, 3, 2),
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, r.BestSize())
	snap := r.Snapshot()
	assert.Equal(t, []IndexPair{{0, 0}, {1, 1}}, snap[0].Pairs())
	assert.Equal(t, []IndexPair{{2, 3}, {3, 2}}, snap[1].Pairs())

	assert.Equal(t, 0, r.Replace(nil))
	assert.Equal(t, 0, r.BestSize())
}

func TestRanker_Reset(t *testing.T) {
	src, tgt := carbonChain(t, 2), carbonChain(t, 2)
	r := NewRanker()
	require.True(t, r.Offer(corr(t, src, tgt, 0, 0)))

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.True(t, r.Offer(corr(t, src, tgt, 0, 0)))
}

func TestRanker_ConcurrentOffers(t *testing.T) {
	src, tgt := carbonChain(t, 6), carbonChain(t, 6)
	r := NewRanker()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		for size := 1; size <= 3; size++ {
			wg.Add(1)
			go func(i, size int) {
				defer wg.Done()
				c := NewCorrespondence(src, tgt)
				for k := 0; k < size; k++ {
					_ = c.Put(k, (i+k)%6)
				}
				r.Offer(c)
				_ = r.Snapshot()
			}(i, size)
		}
	}
	wg.Wait()

	assert.Equal(t, 3, r.BestSize())
	assert.Equal(t, 6, r.Len())
	snap := r.Snapshot()
	for a := range snap {
		for b := a + 1; b < len(snap); b++ {
			assert.False(t, snap[a].Equals(snap[b]))
		}
	}
}

//Personal.AI order the ending
