package models

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

type FilterOperator string

const (
	FilterEq     FilterOperator = "eq"
	FilterNotEq  FilterOperator = "neq"
	FilterIn     FilterOperator = "in"
	FilterIsNull FilterOperator = "is_null"
	FilterAnd    FilterOperator = "and"
	FilterOr     FilterOperator = "or"
)

// Filter is a storage-agnostic predicate. A node is either a comparison on a column
// (eq, neq, in, is_null) xor a combination of children (and, or). It serializes to json
// as is, so conditions can be logged or shipped to another process.
type Filter struct {
	Operator FilterOperator `json:"op"`
	Column   string         `json:"column,omitempty"`
	Value    any            `json:"value,omitempty"`
	Values   []any          `json:"values,omitempty"`
	Children []Filter       `json:"children,omitempty"`
}

// Eq matches rows where column equals value. A nil value matches NULL columns.
func Eq(column string, value any) Filter {
	return Filter{Operator: FilterEq, Column: column, Value: value}
}

// NotEq matches rows where column is not NULL and differs from value.
func NotEq(column string, value any) Filter {
	return Filter{Operator: FilterNotEq, Column: column, Value: value}
}

func In[T any](column string, values []T) Filter {
	anyValues := make([]any, len(values))
	for i, v := range values {
		anyValues[i] = v
	}
	return Filter{Operator: FilterIn, Column: column, Values: anyValues}
}

func IsNull(column string) Filter {
	return Filter{Operator: FilterIsNull, Column: column}
}

func And(children ...Filter) Filter {
	return Filter{Operator: FilterAnd, Children: children}
}

func Or(children ...Filter) Filter {
	return Filter{Operator: FilterOr, Children: children}
}

// IsEmpty is true for the zero filter, which matches every row.
func (f Filter) IsEmpty() bool {
	return f.Operator == ""
}

// Validate checks the filter tree against the schema of the model it is applied to.
func (f Filter) Validate(schema ModelSchema) error {
	switch f.Operator {
	case "":
		return nil
	case FilterEq, FilterNotEq, FilterIn, FilterIsNull:
		if !schema.HasColumn(f.Column) {
			return errors.Wrapf(BadParameterError, "unknown column %q on table %s", f.Column, schema.Table)
		}
		if f.Operator == FilterIn && len(f.Values) == 0 {
			return errors.Wrapf(BadParameterError, "empty value list for column %q", f.Column)
		}
		return nil
	case FilterAnd, FilterOr:
		if len(f.Children) == 0 {
			return errors.Wrapf(BadParameterError, "%s filter without children", f.Operator)
		}
		for _, child := range f.Children {
			if err := child.Validate(schema); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrapf(BadParameterError, "unknown filter operator %q", f.Operator)
	}
}

func (f Filter) String() string {
	switch f.Operator {
	case "":
		return "true"
	case FilterEq:
		return fmt.Sprintf("%s = %v", f.Column, f.Value)
	case FilterNotEq:
		return fmt.Sprintf("%s != %v", f.Column, f.Value)
	case FilterIn:
		return fmt.Sprintf("%s in %v", f.Column, f.Values)
	case FilterIsNull:
		return fmt.Sprintf("%s is null", f.Column)
	case FilterAnd, FilterOr:
		parts := make([]string, len(f.Children))
		for i, child := range f.Children {
			parts[i] = child.String()
		}
		return "(" + strings.Join(parts, fmt.Sprintf(" %s ", f.Operator)) + ")"
	}
	return string(f.Operator)
}

type SortingOrder string

const (
	SortingOrderAsc  SortingOrder = "ASC"
	SortingOrderDesc SortingOrder = "DESC"
)

type OrderBy struct {
	Column string       `json:"column"`
	Order  SortingOrder `json:"order"`
}

func Desc(column string) OrderBy {
	return OrderBy{Column: column, Order: SortingOrderDesc}
}

func Asc(column string) OrderBy {
	return OrderBy{Column: column, Order: SortingOrderAsc}
}
