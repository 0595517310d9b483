package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/checkmarble/consent-ledger/api"
	"github.com/checkmarble/consent-ledger/infra"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/memory"
	"github.com/checkmarble/consent-ledger/repositories/postgres"
	"github.com/checkmarble/consent-ledger/usecases"
	"github.com/checkmarble/consent-ledger/usecases/identifiers"
	"github.com/checkmarble/consent-ledger/utils"
)

func RunServer(config CompiledConfig) error {
	apiConfig := api.Configuration{
		Env:                 utils.GetEnv("ENV", "development"),
		AppName:             "consent-ledger",
		AppVersion:          config.Version,
		Port:                utils.GetRequiredEnv[string]("PORT"),
		RequestLoggingLevel: utils.GetEnv("REQUEST_LOGGING_LEVEL", "all"),
		DefaultTimeout:      time.Duration(utils.GetEnv("DEFAULT_TIMEOUT_SECOND", 10)) * time.Second,
		MaxBodySize:         int64(utils.GetEnv("MAX_BODY_SIZE_BYTES", api.DefaultMaxBodySize)),
		CorsAllowOrigins:    infra.ParseList(utils.GetEnv("CORS_ALLOW_ORIGINS", "")),
		IpHeaders:           infra.ParseList(utils.GetEnv("IP_HEADERS", "")),
		DisableIpTracking:   utils.GetEnv("DISABLE_IP_TRACKING", false),
	}
	ledgerConfig := infra.LedgerConfig{
		StorageEngine: infra.StorageEngine(utils.GetEnv("STORAGE_ENGINE", string(infra.StorageEnginePostgres))),
		IdMaxRetries:  utils.GetEnv("ID_MAX_RETRIES", identifiers.DefaultRetryConfig().MaxRetries),
		IdBaseDelay:   utils.GetEnv("ID_BASE_DELAY", identifiers.DefaultRetryConfig().BaseDelay),
	}
	serverConfig := ServerConfig{
		loggingFormat: utils.GetEnv("LOGGING_FORMAT", utils.LoggingFormatText),
		loggingLevel:  utils.GetEnv("LOGGING_LEVEL", "info"),
		sentryDsn:     utils.GetEnv("SENTRY_DSN", ""),
		otlpEndpoint:  utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		enableTracing: utils.GetEnv("ENABLE_TRACING", false),
	}
	if err := serverConfig.Validate(); err != nil {
		return err
	}

	logger := utils.NewLogger(serverConfig.loggingFormat, serverConfig.logLevel())
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(infra.SentryConfig{
		Dsn:         serverConfig.sentryDsn,
		Environment: apiConfig.Env,
		Version:     config.Version,
	})
	defer sentry.Flush(3 * time.Second)

	telemetryRessources, err := infra.InitTelemetry(ctx, infra.TelemetryConfiguration{
		Enabled:         serverConfig.enableTracing,
		ApplicationName: apiConfig.AppName,
		Version:         config.Version,
		OtlpEndpoint:    serverConfig.otlpEndpoint,
	})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		telemetryRessources = infra.NoopTelemetry()
	}

	utils.RegisterMetrics(prometheus.DefaultRegisterer)

	var storage repositories.Storage
	switch ledgerConfig.StorageEngine {
	case infra.StorageEngineMemory:
		logger.WarnContext(ctx, "Using the in-memory storage, data is lost on restart")
		storage = memory.NewStorage()
	case infra.StorageEnginePostgres:
		pool, err := infra.NewPostgresConnectionPool(ctx, pgConfigFromEnv(), telemetryRessources.TracerProvider)
		if err != nil {
			utils.LogAndReportSentryError(ctx, err)
			return err
		}
		defer pool.Close()
		storage = postgres.NewStorage(pool)
	default:
		return errors.Newf("unknown storage engine %q", ledgerConfig.StorageEngine)
	}

	uc := usecases.NewUsecases(storage,
		usecases.WithApiVersion(config.Version),
		usecases.WithIdRetryConfig(identifiers.RetryConfig{
			MaxRetries: ledgerConfig.IdMaxRetries,
			BaseDelay:  ledgerConfig.IdBaseDelay,
		}),
	)

	router := api.InitRouterMiddlewares(ctx, apiConfig, telemetryRessources)
	server := api.NewServer(router, apiConfig, uc)

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.InfoContext(ctx, "starting server",
			slog.String("port", apiConfig.Port),
			slog.String("storage", string(ledgerConfig.StorageEngine)))
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			utils.LogAndReportSentryError(ctx, errors.Wrap(err, "Error while serving the app"))
		}
		logger.InfoContext(ctx, "server returned")
	}()

	<-notify.Done()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := telemetryRessources.Shutdown(shutdownCtx); err != nil {
		logger.WarnContext(ctx, "Error while flushing traces", "error", err.Error())
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogAndReportSentryError(
			ctx,
			errors.Wrap(err, "Error while shutting down the server"),
		)
		return err
	}

	return nil
}
