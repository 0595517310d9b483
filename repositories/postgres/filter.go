package postgres

import (
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
)

// compileFilter turns a filter tree into a squirrel predicate. Column names are checked
// against the schema first, so they can be used as is in the statement.
func compileFilter(schema models.ModelSchema, filter models.Filter) (squirrel.Sqlizer, error) {
	if err := filter.Validate(schema); err != nil {
		return nil, err
	}
	return compileNode(filter)
}

func compileNode(filter models.Filter) (squirrel.Sqlizer, error) {
	switch filter.Operator {
	case models.FilterEq:
		// squirrel renders a nil value as IS NULL
		return squirrel.Eq{filter.Column: filter.Value}, nil
	case models.FilterNotEq:
		return squirrel.NotEq{filter.Column: filter.Value}, nil
	case models.FilterIn:
		return squirrel.Eq{filter.Column: filter.Values}, nil
	case models.FilterIsNull:
		return squirrel.Eq{filter.Column: nil}, nil
	case models.FilterAnd, models.FilterOr:
		children := make([]squirrel.Sqlizer, 0, len(filter.Children))
		for _, child := range filter.Children {
			compiled, err := compileNode(child)
			if err != nil {
				return nil, err
			}
			children = append(children, compiled)
		}
		if filter.Operator == models.FilterAnd {
			return squirrel.And(children), nil
		}
		return squirrel.Or(children), nil
	}
	return nil, errors.Wrapf(models.BadParameterError, "unknown filter operator %q", filter.Operator)
}

func sortedColumns(values map[string]any) []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	slices.Sort(columns)
	return columns
}
