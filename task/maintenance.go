package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/database"
)

// NewMaintenanceTask trims the log table down to its configured maximum.
func NewMaintenanceTask(logger *slog.Logger, db *database.Database, cnfg *config.AppConfig) func() {
	return func() {
		logger.Debug("running maintenance task...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := db.PurgeLog(ctx, cnfg.Logging.GetDbMaxEntries()); err != nil {
			logger.Error("log purge failed", slog.Any("error", err))
			return
		}
		logger.Info("maintenance task done")
	}
}
