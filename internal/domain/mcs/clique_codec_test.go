package mcs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/KeyIP-MCS/pkg/errors"
)

func TestCompatibilityNodes_Lookup(t *testing.T) {
	nodes := NewCompatibilityNodes([3]int{0, 1, 10}, [3]int{1, 2, 11}, [3]int{2, 0, 12})

	assert.Equal(t, 3, nodes.Len())

	i, j := nodes.Lookup(11)
	assert.Equal(t, 1, i)
	assert.Equal(t, 2, j)

	i, j = nodes.Lookup(99)
	assert.Equal(t, -1, i)
	assert.Equal(t, -1, j)

	i, j, id := nodes.Triple(2)
	assert.Equal(t, [3]int{2, 0, 12}, [3]int{i, j, id})
}

func TestDecodeClique(t *testing.T) {
	nodes := NewCompatibilityNodes([3]int{0, 1, 10}, [3]int{1, 2, 11}, [3]int{2, 0, 12})

	assert.Equal(t, []IndexPair{{0, 1}, {1, 2}}, DecodeClique([]int{10, 11}, nodes))
	assert.Equal(t, []IndexPair{{2, 0}, {0, 1}}, DecodeClique([]int{12, 10}, nodes), "clique order is kept")
	assert.Equal(t, []IndexPair{{-1, -1}}, DecodeClique([]int{7}, nodes))
	assert.Empty(t, DecodeClique(nil, nodes))
}

func TestCompatibilityNodes_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		nodes CompatibilityNodes
		ok    bool
	}{
		{"empty", CompatibilityNodes{}, true},
		{"well formed", NewCompatibilityNodes([3]int{0, 0, 1}, [3]int{1, 1, 2}), true},
		{"broken stride", CompatibilityNodes{0, 0, 1, 1}, false},
		{"duplicate id", NewCompatibilityNodes([3]int{0, 0, 1}, [3]int{1, 1, 1}), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.nodes.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsCode(err, errors.CodeCompatibilityGraph), "got %v", err)
		})
	}
}

//Personal.AI order the ending
