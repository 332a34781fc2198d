package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/icodeforyou/mipi-go/convert"
	"github.com/icodeforyou/mipi-go/gasday"
)

type ReportValueRow struct {
	Report           string
	GasDay           gasday.Date
	ApplicableAt     string
	Value            float64
	QualityIndicator string
	Substituted      string
	GeneratedAt      string
	Fields           string // every raw field of the record as a JSON object
}

type ReportSummaryRow struct {
	Report      string
	FirstGasDay gasday.Date
	LastGasDay  gasday.Date
	Count       int
}

func (d *Database) SaveReportValues(ctx context.Context, rows []ReportValueRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving report values, begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_value (
			report,
			gas_day,
			applicable_at,
			value,
			quality_indicator,
			substituted,
			generated_at,
			fields
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(report, gas_day, applicable_at) DO UPDATE SET
			value = excluded.value,
			quality_indicator = excluded.quality_indicator,
			substituted = excluded.substituted,
			generated_at = excluded.generated_at,
			fields = excluded.fields`)
	if err != nil {
		return fmt.Errorf("saving report values, prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		fields := row.Fields
		if fields == "" {
			fields = "{}"
		}
		_, err := stmt.ExecContext(ctx,
			row.Report,
			row.GasDay.String(),
			row.ApplicableAt,
			convert.RoundFloat64(row.Value, 6),
			row.QualityIndicator,
			row.Substituted,
			row.GeneratedAt,
			fields)
		if err != nil {
			return fmt.Errorf("saving report value %s %s: %w", row.Report, row.GasDay, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving report values, commit: %w", err)
	}

	d.logger.Debug("report values saved", slog.Int("rows", len(rows)))
	return nil
}

// GetReportValues returns every stored revision in gas day order.
func (d *Database) GetReportValues(ctx context.Context, report string, from, to gasday.Date) ([]ReportValueRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT
			report,
			gas_day,
			applicable_at,
			value,
			quality_indicator,
			substituted,
			generated_at,
			fields
		FROM report_value
		WHERE report = ? AND gas_day >= ? AND gas_day <= ?
		ORDER BY gas_day, applicable_at ASC`,
		report, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("fetching report values for %s: %w", report, err)
	}
	defer rows.Close()

	return scanReportValues(rows)
}

// GetReportSeries returns the most recently published value per gas day.
func (d *Database) GetReportSeries(ctx context.Context, report string, from, to gasday.Date) ([]ReportValueRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT
			rv.report,
			rv.gas_day,
			rv.applicable_at,
			rv.value,
			rv.quality_indicator,
			rv.substituted,
			rv.generated_at,
			rv.fields
		FROM report_value rv
		WHERE rv.report = ? AND rv.gas_day >= ? AND rv.gas_day <= ?
			AND rv.applicable_at = (
				SELECT MAX(applicable_at) FROM report_value
				WHERE report = rv.report AND gas_day = rv.gas_day)
		ORDER BY rv.gas_day ASC`,
		report, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("fetching report series for %s: %w", report, err)
	}
	defer rows.Close()

	return scanReportValues(rows)
}

// GetLastGasDay returns the latest stored gas day of a report, false if there is none.
func (d *Database) GetLastGasDay(ctx context.Context, report string) (gasday.Date, bool, error) {
	var last sql.NullString
	err := d.read.QueryRowContext(ctx, `
		SELECT MAX(gas_day) FROM report_value WHERE report = ?`, report).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !last.Valid) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fetching last gas day for %s: %w", report, err)
	}
	return gasday.Date(last.String), true, nil
}

func (d *Database) GetReports(ctx context.Context) ([]ReportSummaryRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT report, MIN(gas_day), MAX(gas_day), COUNT(*)
		FROM report_value
		GROUP BY report
		ORDER BY report ASC`)
	if err != nil {
		return nil, fmt.Errorf("fetching reports: %w", err)
	}
	defer rows.Close()

	var reports []ReportSummaryRow
	for rows.Next() {
		var r ReportSummaryRow
		var first, last string
		if err := rows.Scan(&r.Report, &first, &last, &r.Count); err != nil {
			return nil, fmt.Errorf("scanning report summary row: %w", err)
		}
		r.FirstGasDay = gasday.Date(first)
		r.LastGasDay = gasday.Date(last)
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading report summary rows: %w", err)
	}

	return reports, nil
}

func (d *Database) PurgeReportValues(ctx context.Context, retentionDays int) error {
	return d.purgeBefore(ctx, "report_value", retentionDays)
}

func scanReportValues(rows *sql.Rows) ([]ReportValueRow, error) {
	var values []ReportValueRow
	for rows.Next() {
		var r ReportValueRow
		var day string
		err := rows.Scan(
			&r.Report,
			&day,
			&r.ApplicableAt,
			&r.Value,
			&r.QualityIndicator,
			&r.Substituted,
			&r.GeneratedAt,
			&r.Fields)
		if err != nil {
			return nil, fmt.Errorf("scanning report value row: %w", err)
		}
		r.GasDay = gasday.Date(day)
		values = append(values, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading report value rows: %w", err)
	}

	return values, nil
}
