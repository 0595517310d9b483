package memory

import (
	"encoding/json"
	"reflect"
	"slices"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

// tables holds the stored rows of every model. Stored rows are never mutated in place:
// writes replace them, so a clone only needs to copy the slices.
type tables map[models.Model][]repositories.Row

func (t tables) clone() tables {
	out := make(tables, len(t))
	for model, rows := range t {
		out[model] = slices.Clone(rows)
	}
	return out
}

func schemaOf(model models.Model) (models.ModelSchema, error) {
	schema, ok := model.Schema()
	if !ok {
		return models.ModelSchema{}, errors.Wrapf(models.BadParameterError, "unknown model %q", model)
	}
	return schema, nil
}

func (t tables) findFirst(model models.Model, query repositories.Query) (repositories.Row, error) {
	query.Limit = 1
	rows, err := t.findMany(model, query)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (t tables) findMany(model models.Model, query repositories.Query) ([]repositories.Row, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return nil, err
	}
	if err := query.Where.Validate(schema); err != nil {
		return nil, err
	}
	for _, order := range query.OrderBy {
		if !schema.HasColumn(order.Column) {
			return nil, errors.Wrapf(models.BadParameterError, "unknown sort column %q on table %s", order.Column, schema.Table)
		}
	}

	var matching []repositories.Row
	for _, row := range t[model] {
		if matches(query.Where, row) {
			matching = append(matching, row)
		}
	}
	if len(query.OrderBy) > 0 {
		slices.SortStableFunc(matching, func(a, b repositories.Row) int {
			for _, order := range query.OrderBy {
				c := compareValues(a[order.Column], b[order.Column])
				if order.Order == models.SortingOrderDesc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}
	if query.Limit > 0 && uint64(len(matching)) > query.Limit {
		matching = matching[:query.Limit]
	}

	out := make([]repositories.Row, len(matching))
	for i, row := range matching {
		out[i] = decodeRow(schema, row)
	}
	return out, nil
}

func (t tables) create(model models.Model, data repositories.Row) (repositories.Row, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return nil, err
	}
	row, err := encodeRow(schema, data)
	if err != nil {
		return nil, err
	}
	for _, column := range schema.Columns {
		if _, ok := row[column]; !ok {
			row[column] = nil
		}
	}
	if err := checkUnique(schema, t[model], row, -1); err != nil {
		return nil, err
	}
	t[model] = append(t[model], row)
	return decodeRow(schema, row), nil
}

func (t tables) updateMany(model models.Model, where models.Filter, set repositories.Row) (int64, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return 0, err
	}
	if err := where.Validate(schema); err != nil {
		return 0, err
	}
	values, err := encodeRow(schema, set)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}

	rows := slices.Clone(t[model])
	var updated []int
	for i, row := range rows {
		if !matches(where, row) {
			continue
		}
		next := row.Clone()
		for column, value := range values {
			next[column] = value
		}
		rows[i] = next
		updated = append(updated, i)
	}
	for _, i := range updated {
		if err := checkUnique(schema, rows, rows[i], i); err != nil {
			return 0, err
		}
	}
	t[model] = rows
	return int64(len(updated)), nil
}

func (t tables) deleteMany(model models.Model, where models.Filter) (int64, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return 0, err
	}
	if err := where.Validate(schema); err != nil {
		return 0, err
	}
	before := len(t[model])
	t[model] = slices.DeleteFunc(slices.Clone(t[model]), func(row repositories.Row) bool {
		return matches(where, row)
	})
	return int64(before - len(t[model])), nil
}

func (t tables) upsert(model models.Model, params repositories.UpsertParams) (repositories.Row, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return nil, err
	}
	if !schema.IsUniqueColumn(params.OnConflict) {
		return nil, errors.Wrapf(models.BadParameterError,
			"upsert conflict column %q is not a unique key of %s", params.OnConflict, schema.Table)
	}
	key := normalize(params.Create[params.OnConflict])
	if key == nil {
		return nil, errors.Wrapf(models.BadParameterError, "upsert create data has no value for %q", params.OnConflict)
	}

	for i, row := range t[model] {
		if !equalValues(row[params.OnConflict], key) {
			continue
		}
		values, err := encodeRow(schema, params.Update)
		if err != nil {
			return nil, err
		}
		next := row.Clone()
		for column, value := range values {
			next[column] = value
		}
		if err := checkUnique(schema, t[model], next, i); err != nil {
			return nil, err
		}
		rows := slices.Clone(t[model])
		rows[i] = next
		t[model] = rows
		return decodeRow(schema, next), nil
	}
	return t.create(model, params.Create)
}

// checkUnique fails if row holds a non-null value on a unique column already held by
// another row of rows. skip is the index of row itself in rows, -1 if it is not in it.
func checkUnique(schema models.ModelSchema, rows []repositories.Row, row repositories.Row, skip int) error {
	for _, column := range schema.UniqueColumns {
		value := row[column]
		if value == nil {
			continue
		}
		for i, other := range rows {
			if i != skip && equalValues(other[column], value) {
				return errors.Wrapf(models.ConflictError,
					"duplicate value %v for unique key %s.%s", value, schema.Table, column)
			}
		}
	}
	return nil
}

// encodeRow checks the columns of data against the schema, dereferences pointers and turns
// json columns into their encoded form.
func encodeRow(schema models.ModelSchema, data repositories.Row) (repositories.Row, error) {
	row := make(repositories.Row, len(data))
	for column, value := range data {
		if !schema.HasColumn(column) {
			return nil, errors.Wrapf(models.BadParameterError, "unknown column %q on table %s", column, schema.Table)
		}
		if !schema.IsJsonColumn(column) {
			row[column] = normalize(value)
			continue
		}
		if isNil(value) {
			row[column] = nil
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, errors.Wrapf(err, "could not encode column %s.%s", schema.Table, column)
		}
		row[column] = json.RawMessage(encoded)
	}
	return row, nil
}

// decodeRow returns a copy of a stored row with json columns decoded the way a database
// driver would, into maps and slices of any.
func decodeRow(schema models.ModelSchema, row repositories.Row) repositories.Row {
	out := row.Clone()
	for _, column := range schema.JsonColumns {
		raw, ok := row[column].(json.RawMessage)
		if !ok {
			continue
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			out[column] = decoded
		}
	}
	return out
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// normalize maps the values accepted on writes to the few types rows are stored with.
func normalize(value any) any {
	if isNil(value) {
		return nil
	}
	switch v := value.(type) {
	case string, bool, time.Time, int64, float64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		return normalize(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return value
}
