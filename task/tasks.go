package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/icodeforyou/mipi-go/config"
	"github.com/icodeforyou/mipi-go/database"
	"github.com/robfig/cron/v3"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	logger          *slog.Logger
	syncOnStart     bool
	ReportSyncTask  func()
	MaintenanceTask func()
}

func NewTasks(
	db *database.Database,
	fetcher ReportFetcher,
	cnfg *config.AppConfig,
	listeners ...SyncListener,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	syncLogger := logger.With(slog.String("task", "report_sync"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	syncOnStart := needImmediateReportSync(ctx, db, cnfg.Sync)
	if syncOnStart {
		syncLogger.Info("need an immediate sync of reports")
	} else {
		syncLogger.Debug("no need for immediate sync of reports")
	}

	return &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		logger:          logger,
		syncOnStart:     syncOnStart,
		ReportSyncTask:  NewReportSyncTask(syncLogger, db, fetcher, cnfg.Sync, listeners...),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.Sync.RunAt, t.ReportSyncTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("30 2 * * *", t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()

	if t.syncOnStart {
		go t.ReportSyncTask()
	}
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
