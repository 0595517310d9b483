package pure_utils

import (
	"github.com/hashicorp/go-set/v2"
)

// ContainsAll reports whether every element of items is present in superset. An empty
// items list is contained in any slice.
func ContainsAll[T comparable](superset, items []T) bool {
	return set.From(superset).Subset(set.From(items))
}
