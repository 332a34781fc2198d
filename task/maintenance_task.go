package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/icodeforyou/mipi-go/config"
	"github.com/icodeforyou/mipi-go/database"
)

func NewMaintenanceTask(logger *slog.Logger, db *database.Database, cnfg *config.AppConfig) func() {
	return func() {
		logger.Debug("running maintenance task...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		if err := db.PurgeLog(ctx, cnfg.Logging.GetDbMaxEntries()); err != nil {
			logger.Error("log maintenance error", slog.Any("error", err))
		}

		if err := db.PurgeReportValues(ctx, cnfg.Database.GetDataRetentionDays()); err != nil {
			logger.Error("report_value maintenance error", slog.Any("error", err))
		}

		logger.Info("maintenance task done")
	}
}
