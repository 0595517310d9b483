package repositories

import (
	"context"

	"github.com/checkmarble/consent-ledger/models"
)

// Query selects rows of one model. The zero value selects all rows, in engine order.
type Query struct {
	Where   models.Filter
	OrderBy []models.OrderBy
	// Limit caps the number of rows returned, 0 means no limit.
	Limit uint64
}

// UpsertParams describes an atomic create-or-update keyed on a unique column.
// OnConflict must be one of the model's unique columns, and Create must hold a value for it.
// When a row already holds that value, Update is applied to it instead of inserting Create.
type UpsertParams struct {
	OnConflict string
	Create     Row
	Update     Row
}

// Storage is the contract every storage engine of the ledger honors.
//
// Conflict semantics: engines enforce the unique columns declared by each model schema.
// Create, UpdateMany and Upsert calls that would leave two rows with the same non-null value
// on a unique column fail with an error wrapping models.ConflictError. NULL values never
// conflict with each other.
//
// Transaction runs fn against a handle scoped to one transaction: fn's writes are committed
// together if it returns nil and discarded otherwise. Calling Transaction on such a handle
// opens a savepoint: a failing nested fn discards its own writes only.
type Storage interface {
	// FindFirst returns the first matching row, or a nil row when none matches.
	FindFirst(ctx context.Context, model models.Model, query Query) (Row, error)
	FindMany(ctx context.Context, model models.Model, query Query) ([]Row, error)
	// Create inserts data and returns the row as stored.
	Create(ctx context.Context, model models.Model, data Row) (Row, error)
	UpdateMany(ctx context.Context, model models.Model, where models.Filter, set Row) (int64, error)
	DeleteMany(ctx context.Context, model models.Model, where models.Filter) (int64, error)
	Upsert(ctx context.Context, model models.Model, params UpsertParams) (Row, error)
	Transaction(ctx context.Context, fn func(tx Storage) error) error
}

// TransactionReturnValue runs fn in a transaction of storage and returns its value.
func TransactionReturnValue[ReturnType any](
	ctx context.Context,
	storage Storage,
	fn func(tx Storage) (ReturnType, error),
) (ReturnType, error) {
	var value ReturnType
	transactionErr := storage.Transaction(ctx, func(tx Storage) error {
		var fnErr error
		value, fnErr = fn(tx)
		return fnErr
	})
	return value, transactionErr
}
