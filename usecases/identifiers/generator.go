// Package identifiers generates the ids of ledger rows: a model prefix followed by the
// base58 encoding of a millisecond timestamp and random bytes, checked for uniqueness
// against storage.
package identifiers

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"github.com/mr-tron/base58"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/utils"
)

const (
	// Epoch is the origin of the timestamps embedded in ids, in unix milliseconds.
	Epoch = 1_700_000_000_000

	idByteLength        = 20
	timestampByteLength = 8

	DefaultMaxRetries = 10
	DefaultBaseDelay  = 5 * time.Millisecond

	collisionMaxDelay    = time.Second
	storageErrorMaxDelay = 2 * time.Second
)

var alphabet = base58.NewAlphabet("123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz")

var errCollision = errors.New("generated id already exists")

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

type Generator struct {
	config RetryConfig
	now    func() time.Time
	random io.Reader
}

func NewGenerator(config RetryConfig) Generator {
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = DefaultBaseDelay
	}
	return Generator{config: config, now: time.Now, random: rand.Reader}
}

// GenerateUniqueId returns an id for a new row of model that no row of storage holds yet.
func GenerateUniqueId(ctx context.Context, storage repositories.Storage, model models.Model, config RetryConfig) (string, error) {
	return NewGenerator(config).GenerateUniqueId(ctx, storage, model)
}

// GenerateUniqueId draws candidates until one is not found in storage. Collisions and
// storage errors are both retried with an exponential backoff, up to MaxRetries attempts.
func (g Generator) GenerateUniqueId(ctx context.Context, storage repositories.Storage, model models.Model) (string, error) {
	schema, ok := model.Schema()
	if !ok {
		return "", errors.Wrapf(models.BadParameterError, "unknown model %q", model)
	}
	logger := utils.LoggerFromContext(ctx)

	var id string
	var fatal error
	attempts := 0
	err := retry.Do(
		func() error {
			attempts++
			candidate, err := g.NewId(schema.IdPrefix)
			if err != nil {
				fatal = err
				return retry.Unrecoverable(err)
			}
			existing, err := storage.FindFirst(ctx, model, repositories.Query{
				Where: models.Eq("id", candidate),
			})
			if err != nil {
				return errors.Wrap(err, "error checking id uniqueness")
			}
			if existing != nil {
				return errCollision
			}
			id = candidate
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(g.config.MaxRetries)),
		retry.LastErrorOnly(true),
		retry.DelayType(g.backoff),
		retry.OnRetry(func(n uint, err error) {
			logger.DebugContext(ctx, fmt.Sprintf("retrying %s id generation", model),
				"attempt", n+1, "error", err.Error())
		}),
	)
	if err == nil {
		return id, nil
	}
	if fatal != nil {
		return "", fatal
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", errors.Wrapf(ctxErr, "%s id generation interrupted", model)
	}
	return "", errors.WithStack(models.ErrIdGenerationExhausted(model, attempts).WithCause(err))
}

// backoff waits base*2^n, capped at one second after a collision and two seconds after a
// storage error.
func (g Generator) backoff(n uint, err error, _ *retry.Config) time.Duration {
	limit := storageErrorMaxDelay
	if errors.Is(err, errCollision) {
		limit = collisionMaxDelay
	}
	if n >= 30 {
		return limit
	}
	return min(g.config.BaseDelay<<n, limit)
}

// NewId draws a candidate id without checking storage.
func (g Generator) NewId(prefix string) (string, error) {
	buf := make([]byte, idByteLength)
	offset := g.now().UnixMilli() - Epoch
	binary.BigEndian.PutUint64(buf[:timestampByteLength], uint64(offset))
	if _, err := io.ReadFull(g.random, buf[timestampByteLength:]); err != nil {
		return "", errors.Wrap(err, "could not read random bytes")
	}
	return prefix + "_" + base58.EncodeAlphabet(buf, alphabet), nil
}

// TimestampFromId decodes the creation time embedded in an id.
func TimestampFromId(id string) (time.Time, error) {
	_, encoded, found := strings.Cut(id, "_")
	if !found {
		return time.Time{}, errors.Wrapf(models.BadParameterError, "id %q has no prefix", id)
	}
	buf, err := base58.DecodeAlphabet(encoded, alphabet)
	if err != nil {
		return time.Time{}, errors.Wrapf(models.BadParameterError, "id %q is not base58: %s", id, err)
	}
	if len(buf) != idByteLength {
		return time.Time{}, errors.Wrapf(models.BadParameterError, "id %q has an unexpected length", id)
	}
	offset := int64(binary.BigEndian.Uint64(buf[:timestampByteLength]))
	return time.UnixMilli(offset + Epoch), nil
}
