// Command plot downloads NTS D+6 demand for the first four months of 2020
// and writes it as a Chart.js line chart.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"

	"github.com/icodeforyou/mipi-go/config"
	"github.com/icodeforyou/mipi-go/gasday"
	"github.com/icodeforyou/mipi-go/logging"
	"github.com/icodeforyou/mipi-go/mipi"
	"github.com/icodeforyou/mipi-go/www/chartjs"
)

const (
	chartTitle  = "UK NTS Daily Gas Demand"
	chartYTitle = "Gas Demand in million cubic metres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	out := flag.String("out", "gas_demand.html", "output HTML file")
	flag.Parse()

	logger := slog.New(logging.NewConsoleHandler(os.Stderr, slog.LevelInfo))
	slog.SetDefault(logger)

	if err := run(*configPath, *out); err != nil {
		logger.Error("plot failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath, out string) error {
	cnfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := mipi.New(ctx, slog.Default(), cnfg.Mipi.GetWsdlUrl(), &http.Client{Timeout: cnfg.Mipi.GetTimeout()})
	if err != nil {
		return err
	}

	table, err := client.PhysicalFlows(ctx, gasday.New(2020, 1, 1), gasday.New(2020, 4, 30), mipi.CodeDemandD6, true)
	if err != nil {
		return err
	}

	chart, err := demandChart(table)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if err := chartjs.WritePage(f, chartTitle, chart); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	slog.Info("chart written", slog.String("path", out), slog.Int("points", table.Len()))
	return f.Close()
}

// demandChart indexes the values by ApplicableFor, in gas day order.
func demandChart(table *mipi.Table) (chartjs.Chart, error) {
	type point struct {
		day   gasday.Date
		value float64
	}

	points := make([]point, 0, table.Len())
	for _, r := range table.Records {
		day, err := r.GasDay()
		if err != nil {
			return chartjs.Chart{}, err
		}
		points = append(points, point{day: day, value: r.Value})
	}
	slices.SortStableFunc(points, func(a, b point) int { return a.day.Compare(b.day) })

	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.day.String()
	}

	chart := chartjs.NewChart(chartTitle, labels).
		WithXTitle(mipi.FieldApplicableFor).
		WithYTitle(chartYTitle)
	chart.Data.Datasets[0].Label = mipi.FieldValue
	for i, p := range points {
		chart.Data.Datasets[0].Data[i] = chartjs.FixedFloat64(p.value, 4)
	}

	return chart, nil
}
