// Package memory implements the ledger storage contract in process memory. It backs tests
// and single-instance deployments that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

// Storage is safe for concurrent use. Transactions are serialized: a transaction holds the
// store lock from start to commit, works on a snapshot and swaps it in when fn succeeds.
type Storage struct {
	mu   sync.RWMutex
	data tables
}

func NewStorage() *Storage {
	return &Storage{data: make(tables)}
}

func (s *Storage) FindFirst(ctx context.Context, model models.Model, query repositories.Query) (repositories.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.findFirst(model, query)
}

func (s *Storage) FindMany(ctx context.Context, model models.Model, query repositories.Query) ([]repositories.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.findMany(model, query)
}

func (s *Storage) Create(ctx context.Context, model models.Model, data repositories.Row) (repositories.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.create(model, data)
}

func (s *Storage) UpdateMany(ctx context.Context, model models.Model, where models.Filter, set repositories.Row) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateMany(model, where, set)
}

func (s *Storage) DeleteMany(ctx context.Context, model models.Model, where models.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteMany(model, where)
}

func (s *Storage) Upsert(ctx context.Context, model models.Model, params repositories.UpsertParams) (repositories.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.upsert(model, params)
}

func (s *Storage) Transaction(ctx context.Context, fn func(tx repositories.Storage) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{data: s.data.clone()}
	err := fn(tx)
	if err != nil {
		if errors.Is(err, models.ErrIgnoreRollBackError) {
			return nil
		}
		return err
	}
	s.data = tx.data
	return nil
}

// transaction is the handle passed to transaction callbacks. It is owned by the goroutine
// running the callback and does not lock.
type transaction struct {
	data tables
}

func (tx *transaction) FindFirst(ctx context.Context, model models.Model, query repositories.Query) (repositories.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tx.data.findFirst(model, query)
}

func (tx *transaction) FindMany(ctx context.Context, model models.Model, query repositories.Query) ([]repositories.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tx.data.findMany(model, query)
}

func (tx *transaction) Create(ctx context.Context, model models.Model, data repositories.Row) (repositories.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tx.data.create(model, data)
}

func (tx *transaction) UpdateMany(ctx context.Context, model models.Model, where models.Filter, set repositories.Row) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return tx.data.updateMany(model, where, set)
}

func (tx *transaction) DeleteMany(ctx context.Context, model models.Model, where models.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return tx.data.deleteMany(model, where)
}

func (tx *transaction) Upsert(ctx context.Context, model models.Model, params repositories.UpsertParams) (repositories.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tx.data.upsert(model, params)
}

// Transaction inside a transaction behaves like a savepoint: fn's writes are kept only if
// it succeeds, and the enclosing transaction goes on either way.
func (tx *transaction) Transaction(ctx context.Context, fn func(tx repositories.Storage) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	nested := &transaction{data: tx.data.clone()}
	if err := fn(nested); err != nil {
		if errors.Is(err, models.ErrIgnoreRollBackError) {
			return nil
		}
		return err
	}
	tx.data = nested.data
	return nil
}
