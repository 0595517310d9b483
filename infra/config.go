package infra

import (
	"fmt"
	"strings"
	"time"
)

type PgConfig struct {
	ConnectionString    string
	Database            string
	DbConnectWithSocket bool
	Hostname            string
	Password            string
	Port                string
	User                string
	MaxPoolConnections  int
	SslMode             string
}

func (config PgConfig) GetConnectionString() string {
	if config.ConnectionString != "" {
		return config.ConnectionString
	}

	if config.SslMode == "" {
		config.SslMode = "prefer"
	}

	connectionString := fmt.Sprintf("host=%s user=%s password=%s database=%s sslmode=%s",
		config.Hostname, config.User, config.Password, config.Database, config.SslMode)
	if !config.DbConnectWithSocket {
		// behind a unix socket proxy the port is not needed, but it is when running locally
		connectionString = fmt.Sprintf("%s port=%s", connectionString, config.Port)
	}
	return connectionString
}

type TelemetryConfiguration struct {
	Enabled         bool
	ApplicationName string
	Version         string
	// OtlpEndpoint is the address of the OTLP gRPC collector, empty for the default one.
	OtlpEndpoint string
}

type SentryConfig struct {
	Dsn         string
	Environment string
	Version     string
}

// StorageEngine selects the backend of the ledger.
type StorageEngine string

const (
	StorageEnginePostgres StorageEngine = "postgres"
	StorageEngineMemory   StorageEngine = "memory"
)

type LedgerConfig struct {
	StorageEngine StorageEngine
	// IdMaxRetries and IdBaseDelay tune the uniqueness retries of the identifier generator.
	IdMaxRetries int
	IdBaseDelay  time.Duration
}

// ParseList splits a comma separated environment value, dropping empty items.
func ParseList(value string) []string {
	var out []string
	for item := range strings.SplitSeq(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
