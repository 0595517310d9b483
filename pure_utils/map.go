package pure_utils

import (
	"cmp"
	"slices"
)

// Map returns a new slice with the same length as src, but with values transformed by f
func Map[T, U any](src []T, f func(T) U) []U {
	us := make([]U, len(src))
	for i := range src {
		us[i] = f(src[i])
	}
	return us
}

// KeysWhere returns the keys of src whose value satisfies keep, in ascending order.
func KeysWhere[K cmp.Ordered, V any](src map[K]V, keep func(V) bool) []K {
	keys := make([]K, 0, len(src))
	for key, value := range src {
		if keep(value) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}
