package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/icodeforyou/mipi-go/config"
	"github.com/icodeforyou/mipi-go/database"
	"github.com/icodeforyou/mipi-go/gasday"
	"github.com/icodeforyou/mipi-go/mipi"
)

// Published values are revised up to D+6, so the last days already
// stored are fetched again.
const revisionDays = 6

const reportSyncTimeout = 10 * time.Minute

type ReportFetcher interface {
	Fetch(ctx context.Context, reportName string, from, to gasday.Date, latest bool) (*mipi.Table, error)
}

type ReportStore interface {
	GetLastGasDay(ctx context.Context, report string) (gasday.Date, bool, error)
	SaveReportValues(ctx context.Context, rows []database.ReportValueRow) error
}

// SyncListener is called with the rows saved for a report.
type SyncListener func(report string, rows []database.ReportValueRow)

func NewReportSyncTask(
	logger *slog.Logger,
	store ReportStore,
	fetcher ReportFetcher,
	cnfg config.AppConfigSync,
	listeners ...SyncListener,
) func() {
	var running sync.Mutex
	return func() {
		if !running.TryLock() {
			logger.Warn("report sync task already running")
			return
		}
		defer running.Unlock()
		runReportSyncTask(logger, store, fetcher, cnfg, gasday.Today(), listeners)
	}
}

func runReportSyncTask(
	logger *slog.Logger,
	store ReportStore,
	fetcher ReportFetcher,
	cnfg config.AppConfigSync,
	today gasday.Date,
	listeners []SyncListener,
) {
	logger = logger.With(slog.String("runId", uuid.NewString()))
	logger.Debug("running report sync task...")

	ctx, cancel := context.WithTimeout(context.Background(), reportSyncTimeout)
	defer cancel()

	total := 0
	for _, nameOrCode := range cnfg.Reports {
		report := mipi.ResolveReport(nameOrCode)
		rows, err := syncReport(ctx, store, fetcher, report, today, cnfg)
		if err != nil {
			logger.Error("report sync error", slog.String("report", report), slog.Any("error", err))
			continue
		}
		if len(rows) == 0 {
			continue
		}

		for _, l := range listeners {
			l(report, rows)
		}
		total += len(rows)
	}

	logger.Info("report sync task done", slog.Int("noOfValuesUpdated", total))
}

func syncReport(
	ctx context.Context,
	store ReportStore,
	fetcher ReportFetcher,
	report string,
	today gasday.Date,
	cnfg config.AppConfigSync,
) ([]database.ReportValueRow, error) {
	last, found, err := store.GetLastGasDay(ctx, report)
	if err != nil {
		return nil, err
	}

	from, to := syncWindow(last, found, today, cnfg.GetLookbackDays())
	if from.After(to) {
		return nil, nil
	}

	table, err := fetcher.Fetch(ctx, report, from, to, cnfg.GetLatest())
	if err != nil {
		return nil, err
	}

	rows, err := rowsFromTable(report, table)
	if err != nil {
		return nil, err
	}

	if err := store.SaveReportValues(ctx, rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// syncWindow ends yesterday and starts at the later of today minus the
// lookback and the last stored gas day minus the revision window.
func syncWindow(last gasday.Date, found bool, today gasday.Date, lookbackDays int) (gasday.Date, gasday.Date) {
	to := today.Sub(1)
	from := today.Sub(lookbackDays)
	if found {
		if revised := last.Sub(revisionDays); revised.After(from) {
			from = revised
		}
	}
	return from, to
}

func rowsFromTable(report string, table *mipi.Table) ([]database.ReportValueRow, error) {
	rows := make([]database.ReportValueRow, 0, table.Len())
	for i, r := range table.Records {
		day, err := r.GasDay()
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", report, i, err)
		}

		fields, err := json.Marshal(r.Map())
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", report, i, err)
		}

		rows = append(rows, database.ReportValueRow{
			Report:           report,
			GasDay:           day,
			ApplicableAt:     r.ApplicableAt(),
			Value:            r.Value,
			QualityIndicator: r.QualityIndicator(),
			Substituted:      r.Substituted(),
			GeneratedAt:      r.GeneratedTimeStamp(),
			Fields:           string(fields),
		})
	}
	return rows, nil
}

// needImmediateReportSync is true when some report lacks yesterday's value.
func needImmediateReportSync(ctx context.Context, store ReportStore, cnfg config.AppConfigSync) bool {
	yesterday := gasday.Today().Sub(1)
	for _, nameOrCode := range cnfg.Reports {
		last, found, err := store.GetLastGasDay(ctx, mipi.ResolveReport(nameOrCode))
		if err != nil || !found || last.Before(yesterday) {
			return true
		}
	}
	return false
}
