package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/mapstack/pkg/collection"
)

func TestFilterAndReject(t *testing.T) {
	nums := []int{1, 2, 3, 4, 5}
	even := func(n int) bool { return n%2 == 0 }

	assert.Equal(t, []int{2, 4}, collection.Filter(nums, even))
	assert.Equal(t, []int{1, 3, 5}, collection.Reject(nums, even))
}

func TestReverseCopies(t *testing.T) {
	in := []string{"a", "b", "c"}
	out := collection.Reverse(in)

	assert.Equal(t, []string{"c", "b", "a"}, out)
	assert.Equal(t, []string{"a", "b", "c"}, in, "input is untouched")
}

func TestReduce(t *testing.T) {
	type line struct {
		price float64
		qty   int
	}
	lines := []line{{10, 2}, {4.5, 1}}

	total := collection.Reduce(lines, 0.0, func(sum float64, l line) float64 {
		return sum + l.price*float64(l.qty)
	})
	assert.InDelta(t, 24.5, total, 0.001)
}

func TestFirst(t *testing.T) {
	nums := []int{3, 7, 9}

	v, ok := collection.First(nums, func(n int) bool { return n > 5 })
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = collection.First(nums, func(n int) bool { return n > 100 })
	assert.False(t, ok)
}

func TestUniqueBy(t *testing.T) {
	in := []string{"aa", "ab", "ba", "bb"}
	out := collection.UniqueBy(in, func(s string) byte { return s[0] })
	assert.Equal(t, []string{"aa", "ba"}, out)
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, collection.Chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Nil(t, collection.Chunk([]int{1}, 0))
}
