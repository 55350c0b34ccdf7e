package utils

import (
	"cmp"
	"slices"
)

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Permutations returns every distinct ordering of items in lexicographic
// order. Repeated items do not produce repeated orderings.
func Permutations[T cmp.Ordered](items []T) [][]T {
	if len(items) == 0 {
		return nil
	}
	current := slices.Clone(items)
	slices.Sort(current)
	perms := [][]T{slices.Clone(current)}
	for nextPermutation(current) {
		perms = append(perms, slices.Clone(current))
	}
	return perms
}

// nextPermutation rearranges s into its lexicographic successor, reporting
// false once s is the last ordering.
func nextPermutation[T cmp.Ordered](s []T) bool {
	i := len(s) - 2
	for i >= 0 && s[i] >= s[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(s) - 1
	for s[j] <= s[i] {
		j--
	}
	s[i], s[j] = s[j], s[i]
	slices.Reverse(s[i+1:])
	return true
}

// Dedup keeps the first item for every key, preserving order.
func Dedup[T any](items []T, key func(T) string) []T {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, item := range items {
		k := key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}
