package database

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/icodeforyou/mipi-go/gasday"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New(context.Background(), path)
	require.NoError(t, err)
	db.Close()

	db, err = New(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var version int
	require.NoError(t, db.read.QueryRow("PRAGMA user_version").Scan(&version))
	require.Equal(t, 1, version)
}

func TestSaveAndGetReportValues(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	rows := []ReportValueRow{
		{Report: "SAP, Actual Day", GasDay: "2020-01-01", ApplicableAt: "2020-01-02T11:30:00", Value: 50.0},
		{Report: "SAP, Actual Day", GasDay: "2020-01-02", ApplicableAt: "2020-01-03T11:30:00", Value: 51.2},
		{Report: "SAP, Actual Day", GasDay: "2020-01-02", ApplicableAt: "2020-01-04T11:30:00", Value: 51.4},
		{Report: "Demand Actual, NTS, D+6", GasDay: "2020-01-01", ApplicableAt: "2020-01-07T11:30:00", Value: 300.1},
	}
	require.NoError(t, db.SaveReportValues(ctx, rows))

	values, err := db.GetReportValues(ctx, "SAP, Actual Day", "2020-01-01", "2020-01-31")
	require.NoError(t, err)
	require.Len(t, values, 3)
	require.Equal(t, gasday.Date("2020-01-01"), values[0].GasDay)
	require.Equal(t, "{}", values[0].Fields)

	series, err := db.GetReportSeries(ctx, "SAP, Actual Day", "2020-01-01", "2020-01-31")
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, 51.4, series[1].Value, "series should hold the latest revision")

	// Upsert replaces the value of an existing revision
	rows[0].Value = 49.0
	require.NoError(t, db.SaveReportValues(ctx, rows[:1]))
	values, err = db.GetReportValues(ctx, "SAP, Actual Day", "2020-01-01", "2020-01-01")
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.Equal(t, 49.0, values[0].Value)
}

func TestGetLastGasDay(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	_, ok, err := db.GetLastGasDay(ctx, "SAP, Actual Day")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.SaveReportValues(ctx, []ReportValueRow{
		{Report: "SAP, Actual Day", GasDay: "2020-01-01", ApplicableAt: "a", Value: 1},
		{Report: "SAP, Actual Day", GasDay: "2020-01-05", ApplicableAt: "b", Value: 2},
	}))

	last, ok, err := db.GetLastGasDay(ctx, "SAP, Actual Day")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, gasday.Date("2020-01-05"), last)

	reports, err := db.GetReports(ctx)
	require.NoError(t, err)
	require.Equal(t, []ReportSummaryRow{
		{Report: "SAP, Actual Day", FirstGasDay: "2020-01-01", LastGasDay: "2020-01-05", Count: 2},
	}, reports)
}

func TestPurgeReportValues(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	today := gasday.Today()
	require.NoError(t, db.SaveReportValues(ctx, []ReportValueRow{
		{Report: "PS", GasDay: today.Sub(40), ApplicableAt: "a", Value: 1},
		{Report: "PS", GasDay: today.Sub(5), ApplicableAt: "b", Value: 2},
	}))

	require.NoError(t, db.PurgeReportValues(ctx, 0), "zero retention keeps everything")
	values, err := db.GetReportValues(ctx, "PS", today.Sub(100), today)
	require.NoError(t, err)
	require.Len(t, values, 2)

	require.NoError(t, db.PurgeReportValues(ctx, 30))
	values, err = db.GetReportValues(ctx, "PS", today.Sub(100), today)
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.Equal(t, today.Sub(5), values[0].GasDay)
}

func TestLogEntries(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	for i, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		require.NoError(t, db.SaveLogEntry(ctx, LogEntryRow{
			Timestamp: time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC),
			Level:     int(lvl),
			Message:   lvl.String(),
		}))
	}

	entries, err := db.GetLogEntries(ctx, slog.LevelInfo, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "ERROR", entries[0].Message, "newest first")
	require.Equal(t, "ERROR", entries[0].LevelName())

	require.NoError(t, db.PurgeLog(ctx, 2))
	entries, err = db.GetLogEntries(ctx, slog.LevelDebug, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
