package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

// Storage is a testify double of repositories.Storage. Transaction runs the callback
// against TxMock when set, against the mock itself otherwise.
type Storage struct {
	mock.Mock
	TxMock *Storage
}

func (s *Storage) FindFirst(ctx context.Context, model models.Model, query repositories.Query) (repositories.Row, error) {
	args := s.Called(ctx, model, query)
	row, _ := args.Get(0).(repositories.Row)
	return row, args.Error(1)
}

func (s *Storage) FindMany(ctx context.Context, model models.Model, query repositories.Query) ([]repositories.Row, error) {
	args := s.Called(ctx, model, query)
	rows, _ := args.Get(0).([]repositories.Row)
	return rows, args.Error(1)
}

func (s *Storage) Create(ctx context.Context, model models.Model, data repositories.Row) (repositories.Row, error) {
	args := s.Called(ctx, model, data)
	row, _ := args.Get(0).(repositories.Row)
	return row, args.Error(1)
}

func (s *Storage) UpdateMany(ctx context.Context, model models.Model, where models.Filter, set repositories.Row) (int64, error) {
	args := s.Called(ctx, model, where, set)
	return args.Get(0).(int64), args.Error(1)
}

func (s *Storage) DeleteMany(ctx context.Context, model models.Model, where models.Filter) (int64, error) {
	args := s.Called(ctx, model, where)
	return args.Get(0).(int64), args.Error(1)
}

func (s *Storage) Upsert(ctx context.Context, model models.Model, params repositories.UpsertParams) (repositories.Row, error) {
	args := s.Called(ctx, model, params)
	row, _ := args.Get(0).(repositories.Row)
	return row, args.Error(1)
}

func (s *Storage) Transaction(ctx context.Context, fn func(tx repositories.Storage) error) error {
	args := s.Called(ctx, fn)
	tx := s
	if s.TxMock != nil {
		tx = s.TxMock
	}
	if err := fn(tx); err != nil {
		return err
	}
	return args.Error(0)
}
