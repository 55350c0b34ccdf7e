package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermutations(t *testing.T) {
	t.Run("distinct items", func(t *testing.T) {
		got := Permutations([]int{3, 1, 2})
		require.Equal(t, [][]int{
			{1, 2, 3}, {1, 3, 2}, {2, 1, 3}, {2, 3, 1}, {3, 1, 2}, {3, 2, 1},
		}, got)
	})

	t.Run("repeated items yield distinct orderings only", func(t *testing.T) {
		got := Permutations([]int{2, 1, 2})
		require.Equal(t, [][]int{{1, 2, 2}, {2, 1, 2}, {2, 2, 1}}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		require.Empty(t, Permutations([]int{}))
	})

	t.Run("input is not modified", func(t *testing.T) {
		items := []int{3, 1}
		Permutations(items)
		require.Equal(t, []int{3, 1}, items)
	})
}

func TestDedup(t *testing.T) {
	got := Dedup([]string{"b", "a", "b", "c", "a"}, func(s string) string { return s })
	require.Equal(t, []string{"b", "a", "c"}, got)
}

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"a", "b"}, "b"))
	require.Equal(t, -1, FindIndex([]string{"a", "b"}, "c"))
}
