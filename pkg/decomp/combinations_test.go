package decomp

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(it *CombinationIterator) [][]int {
	var out [][]int
	for idx := it.Next(); idx != nil; idx = it.Next() {
		out = append(out, slices.Clone(idx))
	}
	return out
}

func TestCombinationIteratorStages(t *testing.T) {
	got := collect(NewCombinationIterator(3, 2))
	want := [][]int{
		{0}, {1}, {2},
		{0, 1}, {0, 2}, {1, 2},
	}
	assert.Equal(t, want, got)
}

func TestCombinationIteratorSetStage(t *testing.T) {
	it := NewCombinationIterator(4, 2)
	it.SetStage(2)
	got := collect(it)
	assert.Len(t, got, 6)
	for _, idx := range got {
		assert.Len(t, idx, 2)
	}
}

func TestCombinationIteratorCapsAtN(t *testing.T) {
	it := NewCombinationIterator(2, 5)
	it.SetStage(5)
	assert.Equal(t, [][]int{{0, 1}}, collect(it))
}

func TestCombinationIteratorReset(t *testing.T) {
	it := NewCombinationIterator(3, 1)
	first := collect(it)
	assert.Nil(t, it.Next())
	it.Reset()
	assert.Equal(t, first, collect(it))
}

func TestCombinationIteratorEmpty(t *testing.T) {
	assert.Empty(t, collect(NewCombinationIterator(0, 3)))
	assert.Empty(t, collect(NewCombinationIterator(3, 0)))
	assert.Empty(t, collect(NewCombinationIterator(3, -1)))
}
