package integration

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/checkmarble/consent-ledger/api"
	"github.com/checkmarble/consent-ledger/infra"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/postgres"
	"github.com/checkmarble/consent-ledger/usecases"
	"github.com/checkmarble/consent-ledger/utils"
)

const (
	testUser     = "postgres"
	testPassword = "pwd"
	testDbName   = "consent_ledger"
)

var (
	testDbPool *pgxpool.Pool
	testServer *httptest.Server
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping integration tests in short mode")
		os.Exit(0)
	}

	ctx := context.Background()
	logger := utils.NewLogger(utils.LoggingFormatText, slog.LevelWarn)
	ctx = utils.StoreLoggerInContext(ctx, logger)

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(testDbName),
		tcpostgres.WithUsername(testUser),
		tcpostgres.WithPassword(testPassword),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Fatalf("Could not start postgres container: %s", err)
	}

	code := run(ctx, m, container)

	if err := testcontainers.TerminateContainer(container); err != nil {
		log.Printf("Could not terminate postgres container: %s", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, m *testing.M, container *tcpostgres.PostgresContainer) int {
	connectionString, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Printf("Could not read connection string: %s", err)
		return 1
	}

	pgConfig := infra.PgConfig{ConnectionString: connectionString}
	if err := repositories.NewMigrater(pgConfig).Run(ctx); err != nil {
		log.Printf("Could not run migrations: %s", err)
		return 1
	}

	telemetryRessources := infra.NoopTelemetry()
	testDbPool, err = infra.NewPostgresConnectionPool(ctx, pgConfig, telemetryRessources.TracerProvider)
	if err != nil {
		log.Printf("Could not create connection pool: %s", err)
		return 1
	}
	defer testDbPool.Close()

	apiConfig := api.Configuration{
		Env:                 "development",
		AppName:             "consent-ledger",
		AppVersion:          "integration",
		RequestLoggingLevel: "errors",
		DefaultTimeout:      5 * time.Second,
	}
	uc := usecases.NewUsecases(postgres.NewStorage(testDbPool), usecases.WithApiVersion(apiConfig.AppVersion))
	router := api.InitRouterMiddlewares(ctx, apiConfig, telemetryRessources)
	server := api.NewServer(router, apiConfig, uc, api.WithLocalTest(true))

	testServer = httptest.NewServer(server.Handler)
	defer testServer.Close()

	return m.Run()
}
