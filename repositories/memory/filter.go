package memory

import (
	"cmp"
	"time"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

// matches evaluates a validated filter against a stored row, with SQL semantics on NULL:
// a comparison with a NULL column never holds, except for eq nil and is_null.
func matches(filter models.Filter, row repositories.Row) bool {
	switch filter.Operator {
	case "":
		return true
	case models.FilterEq:
		value := normalize(filter.Value)
		if value == nil {
			return row[filter.Column] == nil
		}
		return equalValues(row[filter.Column], value)
	case models.FilterNotEq:
		current := row[filter.Column]
		value := normalize(filter.Value)
		if value == nil {
			return current != nil
		}
		return current != nil && !equalValues(current, value)
	case models.FilterIn:
		for _, v := range filter.Values {
			if equalValues(row[filter.Column], normalize(v)) {
				return true
			}
		}
		return false
	case models.FilterIsNull:
		return row[filter.Column] == nil
	case models.FilterAnd:
		for _, child := range filter.Children {
			if !matches(child, row) {
				return false
			}
		}
		return true
	case models.FilterOr:
		for _, child := range filter.Children {
			if matches(child, row) {
				return true
			}
		}
		return false
	}
	return false
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case int64:
		if bv, ok := b.(float64); ok {
			return float64(av) == bv
		}
	case float64:
		if bv, ok := b.(int64); ok {
			return av == float64(bv)
		}
	}
	switch a.(type) {
	case string, bool, int64, float64:
		return a == b
	}
	return false
}

// compareValues orders stored values the way PostgreSQL does by default: NULL sorts after
// every other value.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}
