package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

// executor is satisfied by *pgxpool.Pool, pgx.Tx and the pgxmock doubles.
type executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Storage implements repositories.Storage on top of a PostgreSQL database.
type Storage struct {
	exec executor
}

func NewStorage(exec executor) *Storage {
	return &Storage{exec: exec}
}

func NewQueryBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func schemaOf(model models.Model) (models.ModelSchema, error) {
	schema, ok := model.Schema()
	if !ok {
		return models.ModelSchema{}, errors.Wrapf(models.BadParameterError, "unknown model %q", model)
	}
	return schema, nil
}

func (s *Storage) FindFirst(ctx context.Context, model models.Model, query repositories.Query) (repositories.Row, error) {
	query.Limit = 1
	rows, err := s.FindMany(ctx, model, query)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *Storage) FindMany(ctx context.Context, model models.Model, query repositories.Query) ([]repositories.Row, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return nil, err
	}
	sql, err := selectQuery(schema, query)
	if err != nil {
		return nil, err
	}
	return s.queryRows(ctx, sql)
}

func (s *Storage) Create(ctx context.Context, model models.Model, data repositories.Row) (repositories.Row, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return nil, err
	}
	sql, err := insertQuery(schema, data)
	if err != nil {
		return nil, err
	}
	rows, err := s.queryRows(ctx, sql)
	if err != nil {
		return nil, conflictOrError(err, schema)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *Storage) UpdateMany(ctx context.Context, model models.Model, where models.Filter, set repositories.Row) (int64, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return 0, err
	}
	if len(set) == 0 {
		return 0, nil
	}
	sql, err := updateQuery(schema, where, set)
	if err != nil {
		return 0, err
	}
	return s.execBuilder(ctx, sql, schema)
}

func (s *Storage) DeleteMany(ctx context.Context, model models.Model, where models.Filter) (int64, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return 0, err
	}
	sql, err := deleteQuery(schema, where)
	if err != nil {
		return 0, err
	}
	return s.execBuilder(ctx, sql, schema)
}

func (s *Storage) Upsert(ctx context.Context, model models.Model, params repositories.UpsertParams) (repositories.Row, error) {
	schema, err := schemaOf(model)
	if err != nil {
		return nil, err
	}
	sql, err := upsertQuery(schema, params)
	if err != nil {
		return nil, err
	}
	rows, err := s.queryRows(ctx, sql)
	if err != nil {
		return nil, conflictOrError(err, schema)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Transaction runs fn in a database transaction. On a handle which is already a
// transaction, pgx opens a savepoint.
func (s *Storage) Transaction(ctx context.Context, fn func(tx repositories.Storage) error) error {
	err := pgx.BeginFunc(ctx, s.exec, func(tx pgx.Tx) error {
		return fn(&Storage{exec: tx})
	})

	// The callback can return ErrIgnoreRollBackError to explicitly specify that the
	// error should be ignored.
	if errors.Is(err, models.ErrIgnoreRollBackError) {
		return nil
	}
	return err
}

func (s *Storage) queryRows(ctx context.Context, query squirrel.Sqlizer) ([]repositories.Row, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "can't build sql query")
	}

	rows, err := s.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing sql query")
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, errors.Wrap(err, "error collecting rows")
	}
	out := make([]repositories.Row, len(maps))
	for i, m := range maps {
		out[i] = repositories.Row(m)
	}
	return out, nil
}

func (s *Storage) execBuilder(ctx context.Context, query squirrel.Sqlizer, schema models.ModelSchema) (int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "can't build sql query")
	}
	tag, err := s.exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, conflictOrError(errors.Wrap(err, fmt.Sprintf("error executing sql query: %s", sql)), schema)
	}
	return tag.RowsAffected(), nil
}

func conflictOrError(err error, schema models.ModelSchema) error {
	constraint, ok := repositories.UniqueViolation(err)
	if !ok {
		return err
	}
	if constraint == "" {
		constraint = "unique key"
	}
	return errors.WithSecondaryError(
		errors.Wrapf(models.ConflictError, "%s violated on %s", constraint, schema.Table), err)
}

func selectQuery(schema models.ModelSchema, query repositories.Query) (squirrel.SelectBuilder, error) {
	q := NewQueryBuilder().Select("*").From(schema.Table)
	if !query.Where.IsEmpty() {
		where, err := compileFilter(schema, query.Where)
		if err != nil {
			return q, err
		}
		q = q.Where(where)
	}
	for _, order := range query.OrderBy {
		if !schema.HasColumn(order.Column) {
			return q, errors.Wrapf(models.BadParameterError, "unknown sort column %q on table %s", order.Column, schema.Table)
		}
		direction := models.SortingOrderAsc
		if order.Order == models.SortingOrderDesc {
			direction = models.SortingOrderDesc
		}
		q = q.OrderBy(fmt.Sprintf("%s %s", order.Column, direction))
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	return q, nil
}

func insertQuery(schema models.ModelSchema, data repositories.Row) (squirrel.InsertBuilder, error) {
	values, err := dbValues(schema, data)
	if err != nil {
		return squirrel.InsertBuilder{}, err
	}
	return NewQueryBuilder().Insert(schema.Table).SetMap(values).Suffix("RETURNING *"), nil
}

func upsertQuery(schema models.ModelSchema, params repositories.UpsertParams) (squirrel.InsertBuilder, error) {
	if !schema.IsUniqueColumn(params.OnConflict) {
		return squirrel.InsertBuilder{}, errors.Wrapf(models.BadParameterError,
			"upsert conflict column %q is not a unique key of %s", params.OnConflict, schema.Table)
	}
	if params.Create[params.OnConflict] == nil {
		return squirrel.InsertBuilder{}, errors.Wrapf(models.BadParameterError,
			"upsert create data has no value for %q", params.OnConflict)
	}
	createValues, err := dbValues(schema, params.Create)
	if err != nil {
		return squirrel.InsertBuilder{}, err
	}
	updateValues, err := dbValues(schema, params.Update)
	if err != nil {
		return squirrel.InsertBuilder{}, err
	}

	// do update, even with nothing to update, so that RETURNING yields the existing row
	var assignments []string
	var args []any
	if len(updateValues) == 0 {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", params.OnConflict, params.OnConflict))
	}
	for _, column := range sortedColumns(updateValues) {
		assignments = append(assignments, column+" = ?")
		args = append(args, updateValues[column])
	}

	suffix := fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
		params.OnConflict, strings.Join(assignments, ", "))
	return NewQueryBuilder().
		Insert(schema.Table).
		SetMap(createValues).
		SuffixExpr(squirrel.Expr(suffix, args...)), nil
}

func updateQuery(schema models.ModelSchema, where models.Filter, set repositories.Row) (squirrel.UpdateBuilder, error) {
	q := NewQueryBuilder().Update(schema.Table)
	values, err := dbValues(schema, set)
	if err != nil {
		return q, err
	}
	q = q.SetMap(values)
	if !where.IsEmpty() {
		w, err := compileFilter(schema, where)
		if err != nil {
			return q, err
		}
		q = q.Where(w)
	}
	return q, nil
}

func deleteQuery(schema models.ModelSchema, where models.Filter) (squirrel.DeleteBuilder, error) {
	q := NewQueryBuilder().Delete(schema.Table)
	if !where.IsEmpty() {
		w, err := compileFilter(schema, where)
		if err != nil {
			return q, err
		}
		q = q.Where(w)
	}
	return q, nil
}

// dbValues checks the columns of data against the schema and encodes json columns.
func dbValues(schema models.ModelSchema, data repositories.Row) (map[string]any, error) {
	values := make(map[string]any, len(data))
	for column, value := range data {
		if !schema.HasColumn(column) {
			return nil, errors.Wrapf(models.BadParameterError, "unknown column %q on table %s", column, schema.Table)
		}
		if !schema.IsJsonColumn(column) || isNil(value) {
			values[column] = value
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, errors.Wrapf(err, "could not encode column %s.%s", schema.Table, column)
		}
		values[column] = encoded
	}
	return values, nil
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
