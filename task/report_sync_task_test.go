package task

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/icodeforyou/mipi-go/config"
	"github.com/icodeforyou/mipi-go/database"
	"github.com/icodeforyou/mipi-go/gasday"
	"github.com/icodeforyou/mipi-go/mipi"
	"github.com/stretchr/testify/require"
)

type fetchCall struct {
	report   string
	from, to gasday.Date
	latest   bool
}

type fakeFetcher struct {
	calls  []fetchCall
	tables map[string]*mipi.Table
	errs   map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, reportName string, from, to gasday.Date, latest bool) (*mipi.Table, error) {
	f.calls = append(f.calls, fetchCall{report: reportName, from: from, to: to, latest: latest})
	if err := f.errs[reportName]; err != nil {
		return nil, err
	}
	if t, ok := f.tables[reportName]; ok {
		return t, nil
	}
	return &mipi.Table{ReportName: reportName}, nil
}

type fakeStore struct {
	last  map[string]gasday.Date
	saved map[string][]database.ReportValueRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{last: map[string]gasday.Date{}, saved: map[string][]database.ReportValueRow{}}
}

func (s *fakeStore) GetLastGasDay(ctx context.Context, report string) (gasday.Date, bool, error) {
	d, ok := s.last[report]
	return d, ok, nil
}

func (s *fakeStore) SaveReportValues(ctx context.Context, rows []database.ReportValueRow) error {
	for _, r := range rows {
		s.saved[r.Report] = append(s.saved[r.Report], r)
	}
	return nil
}

func record(applicableFor string, value float64) mipi.Record {
	return mipi.Record{
		Fields: []mipi.Field{
			{Name: mipi.FieldApplicableAt, Value: applicableFor},
			{Name: mipi.FieldApplicableFor, Value: applicableFor},
			{Name: mipi.FieldValue, Value: "x"},
			{Name: mipi.FieldQualityIndicator, Value: "A"},
			{Name: mipi.FieldSubstituted, Value: ""},
			{Name: mipi.FieldCreatedDate, Nil: true},
		},
		Value: value,
	}
}

func TestSyncWindow(t *testing.T) {
	today := gasday.New(2020, 2, 1)

	tests := []struct {
		name     string
		last     gasday.Date
		found    bool
		lookback int
		from, to gasday.Date
	}{
		{name: "nothing stored", lookback: 30, from: "2020-01-02", to: "2020-01-31"},
		{name: "recent value stored", last: "2020-01-30", found: true, lookback: 30, from: "2020-01-24", to: "2020-01-31"},
		{name: "old value stored", last: "2019-06-01", found: true, lookback: 30, from: "2020-01-02", to: "2020-01-31"},
		{name: "short lookback", lookback: 1, from: "2020-01-31", to: "2020-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := syncWindow(tt.last, tt.found, today, tt.lookback)
			require.Equal(t, tt.from, from)
			require.Equal(t, tt.to, to)
		})
	}
}

func TestRunReportSyncTask(t *testing.T) {
	sap := mipi.ReportSystemAveragePrice
	dp6, _ := mipi.ReportNameForCode("DP6")

	fetcher := &fakeFetcher{
		tables: map[string]*mipi.Table{
			sap: {ReportName: sap, Records: []mipi.Record{
				record("2020-01-30T00:00:00Z", 50.0),
				record("2020-01-31T00:00:00Z", 51.2),
			}},
		},
		errs: map[string]error{dp6: errors.New("service unavailable")},
	}
	store := newFakeStore()
	store.last[sap] = "2020-01-29"

	var notified []string
	listener := func(report string, rows []database.ReportValueRow) {
		notified = append(notified, report)
	}

	lookback := 10
	cnfg := config.AppConfigSync{Reports: []string{"DP6", "SAP"}, LookbackDays: &lookback}
	runReportSyncTask(slog.Default(), store, fetcher, cnfg, gasday.New(2020, 2, 1), []SyncListener{listener})

	require.Len(t, fetcher.calls, 2)
	require.Equal(t, fetchCall{report: dp6, from: "2020-01-22", to: "2020-01-31", latest: true}, fetcher.calls[0])
	require.Equal(t, fetchCall{report: sap, from: "2020-01-23", to: "2020-01-31", latest: true}, fetcher.calls[1])

	rows := store.saved[sap]
	require.Len(t, rows, 2)
	require.Equal(t, gasday.Date("2020-01-31"), rows[1].GasDay)
	require.Equal(t, 51.2, rows[1].Value)
	require.Equal(t, "A", rows[1].QualityIndicator)

	var fields map[string]*string
	require.NoError(t, json.Unmarshal([]byte(rows[0].Fields), &fields))
	require.Equal(t, "2020-01-30T00:00:00Z", *fields[mipi.FieldApplicableFor])
	require.Equal(t, "", *fields[mipi.FieldSubstituted])
	require.Contains(t, fields, mipi.FieldCreatedDate)
	require.Nil(t, fields[mipi.FieldCreatedDate])
	require.Contains(t, rows[0].Fields, `"CreatedDate":null`)

	require.Empty(t, store.saved[dp6])
	require.Equal(t, []string{sap}, notified)
}

func TestRunReportSyncTaskSkipsEmptyTables(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := newFakeStore()
	called := false

	cnfg := config.AppConfigSync{Reports: []string{"PS"}}
	runReportSyncTask(slog.Default(), store, fetcher, cnfg, gasday.New(2020, 2, 1), []SyncListener{
		func(string, []database.ReportValueRow) { called = true },
	})

	require.Len(t, fetcher.calls, 1)
	require.False(t, called)
}

func TestRowsFromTableRejectsBadGasDay(t *testing.T) {
	table := &mipi.Table{Records: []mipi.Record{record("not a day", 1)}}
	_, err := rowsFromTable("SAP, Actual Day", table)
	require.Error(t, err)
}

func TestNeedImmediateReportSync(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cnfg := config.AppConfigSync{Reports: []string{"SAP"}}

	require.True(t, needImmediateReportSync(ctx, store, cnfg))

	store.last[mipi.ReportSystemAveragePrice] = gasday.Today().Sub(1)
	require.False(t, needImmediateReportSync(ctx, store, cnfg))
}

func TestMaintenanceTask(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	today := gasday.Today()
	err = db.SaveReportValues(ctx, []database.ReportValueRow{
		{Report: "SAP, Actual Day", GasDay: today.Sub(100), ApplicableAt: "a", Fields: "{}"},
		{Report: "SAP, Actual Day", GasDay: today.Sub(1), ApplicableAt: "b", Fields: "{}"},
	})
	require.NoError(t, err)

	retention := 30
	cnfg := &config.AppConfig{Database: config.AppConfigDatabase{DataRetentionDays: &retention}}
	NewMaintenanceTask(slog.Default(), db, cnfg)()

	rows, err := db.GetReportValues(ctx, "SAP, Actual Day", today.Sub(365), today)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, today.Sub(1), rows[0].GasDay)
}
