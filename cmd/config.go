package cmd

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/infra"
	"github.com/checkmarble/consent-ledger/utils"
)

type CompiledConfig struct {
	Version string
}

type ServerConfig struct {
	loggingFormat string
	loggingLevel  string
	sentryDsn     string
	otlpEndpoint  string
	enableTracing bool
}

func (config ServerConfig) Validate() error {
	if config.loggingFormat != utils.LoggingFormatJson && config.loggingFormat != utils.LoggingFormatText {
		return errors.Newf("logging format must be %s or %s", utils.LoggingFormatJson, utils.LoggingFormatText)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.loggingLevel)); err != nil {
		return errors.Wrap(err, "invalid logging level")
	}
	return nil
}

func (config ServerConfig) logLevel() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(config.loggingLevel))
	return level
}

func pgConfigFromEnv() infra.PgConfig {
	return infra.PgConfig{
		ConnectionString:   utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:           utils.GetEnv("PG_DATABASE", "consent_ledger"),
		Hostname:           utils.GetEnv("PG_HOSTNAME", ""),
		Password:           utils.GetEnv("PG_PASSWORD", ""),
		Port:               utils.GetEnv("PG_PORT", "5432"),
		User:               utils.GetEnv("PG_USER", ""),
		MaxPoolConnections: utils.GetEnv("PG_MAX_POOL_SIZE", infra.DEFAULT_MAX_CONNECTIONS),
		SslMode:            utils.GetEnv("PG_SSL_MODE", "prefer"),
	}
}
