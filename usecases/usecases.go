package usecases

import (
	"time"

	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/usecases/identifiers"
	"github.com/checkmarble/consent-ledger/usecases/registries"
)

type Usecases struct {
	Storage       repositories.Storage
	apiVersion    string
	idRetryConfig identifiers.RetryConfig
	now           func() time.Time
}

type Option func(*options)

func WithApiVersion(apiVersion string) Option {
	return func(o *options) {
		o.apiVersion = apiVersion
	}
}

func WithIdRetryConfig(config identifiers.RetryConfig) Option {
	return func(o *options) {
		o.idRetryConfig = config
	}
}

// WithClock replaces the clock used to timestamp rows and status responses.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

type options struct {
	apiVersion    string
	idRetryConfig identifiers.RetryConfig
	now           func() time.Time
}

func newUsecasesWithOptions(storage repositories.Storage, o *options) Usecases {
	if o.idRetryConfig == (identifiers.RetryConfig{}) {
		o.idRetryConfig = identifiers.DefaultRetryConfig()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return Usecases{
		Storage:       storage,
		apiVersion:    o.apiVersion,
		idRetryConfig: o.idRetryConfig,
		now:           o.now,
	}
}

func NewUsecases(storage repositories.Storage, opts ...Option) Usecases {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return newUsecasesWithOptions(storage, o)
}

func (usecases *Usecases) NewRegistries() registries.Registries {
	return registries.NewRegistries(usecases.Storage, identifiers.NewGenerator(usecases.idRetryConfig)).
		WithClock(usecases.now)
}

func (usecases *Usecases) NewConsentUsecase() ConsentUsecase {
	return ConsentUsecase{
		storage:    usecases.Storage,
		registries: usecases.NewRegistries(),
	}
}

func (usecases *Usecases) NewIdentifyUsecase() IdentifyUsecase {
	return IdentifyUsecase{
		storage:    usecases.Storage,
		registries: usecases.NewRegistries(),
	}
}

func (usecases *Usecases) NewStatusUsecase() StatusUsecase {
	return StatusUsecase{
		apiVersion: usecases.apiVersion,
		now:        usecases.now,
	}
}

func (usecases *Usecases) NewLivenessUsecase() LivenessUsecase {
	return LivenessUsecase{storage: usecases.Storage}
}
