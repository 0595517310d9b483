// Package registries wraps storage calls with the find-or-create and create semantics of
// each ledger entity.
package registries

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/usecases/identifiers"
)

type registry struct {
	storage repositories.Storage
	ids     identifiers.Generator
	now     func() time.Time
}

func (r registry) newId(ctx context.Context, model models.Model) (string, error) {
	return r.ids.GenerateUniqueId(ctx, r.storage, model)
}

func (r registry) timestamp() time.Time {
	return r.now().UTC()
}

// findOne reads one row of model and adapts it, returning nil when none matches.
func findOne[T any](ctx context.Context, r registry, model models.Model, query repositories.Query, adapt func(repositories.Row) T) (*T, error) {
	row, err := r.storage.FindFirst(ctx, model, query)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", model)
	}
	if row == nil {
		return nil, nil
	}
	value := adapt(row)
	return &value, nil
}

// Registries groups the registries of every entity, bound to the same storage handle.
type Registries struct {
	DomainRegistry         DomainRegistry
	ConsentPolicyRegistry  ConsentPolicyRegistry
	ConsentPurposeRegistry ConsentPurposeRegistry
	SubjectRegistry        SubjectRegistry
	ConsentRegistry        ConsentRegistry
	ConsentRecordRegistry  ConsentRecordRegistry
	AuditLogRegistry       AuditLogRegistry

	base registry
}

func NewRegistries(storage repositories.Storage, ids identifiers.Generator) Registries {
	return newRegistries(registry{storage: storage, ids: ids, now: time.Now})
}

func newRegistries(base registry) Registries {
	return Registries{
		DomainRegistry:         DomainRegistry{base},
		ConsentPolicyRegistry:  ConsentPolicyRegistry{base},
		ConsentPurposeRegistry: ConsentPurposeRegistry{base},
		SubjectRegistry:        SubjectRegistry{base},
		ConsentRegistry:        ConsentRegistry{base},
		ConsentRecordRegistry:  ConsentRecordRegistry{base},
		AuditLogRegistry:       AuditLogRegistry{base},
		base:                   base,
	}
}

// WithStorage returns the registries bound to another storage handle, typically the
// handle of a transaction, so that writes and id uniqueness checks go through it.
func (r Registries) WithStorage(storage repositories.Storage) Registries {
	base := r.base
	base.storage = storage
	return newRegistries(base)
}

// WithClock returns the registries using now to timestamp the rows they create.
func (r Registries) WithClock(now func() time.Time) Registries {
	base := r.base
	base.now = now
	return newRegistries(base)
}

func (r Registries) Storage() repositories.Storage {
	return r.base.storage
}

// Now is the current time on the registries clock, in UTC.
func (r Registries) Now() time.Time {
	return r.base.timestamp()
}
