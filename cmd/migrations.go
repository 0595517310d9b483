package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/utils"
)

func RunMigrations() error {
	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", utils.LoggingFormatText), slog.LevelInfo)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	migrater := repositories.NewMigrater(pgConfigFromEnv())
	if err := migrater.Run(ctx); err != nil {
		logger.ErrorContext(ctx, fmt.Sprintf("error running migrations: %v", err))
		return err
	}

	return nil
}
