// Command fetch downloads one MIPI report and writes it as CSV to stdout.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/icodeforyou/mipi-go/config"
	"github.com/icodeforyou/mipi-go/gasday"
	"github.com/icodeforyou/mipi-go/logging"
	"github.com/icodeforyou/mipi-go/mipi"
)

type options struct {
	configPath string
	report     string
	code       string
	from       string
	to         string
	all        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to config file")
	flag.StringVar(&opts.report, "report", "", "report name, e.g. \"SAP, Actual Day\"")
	flag.StringVar(&opts.code, "code", "", "physical flow code: DP6, DP1 or PS")
	flag.StringVar(&opts.from, "from", "", "first gas day (YYYY-MM-DD), default 30 days before -to")
	flag.StringVar(&opts.to, "to", "", "last gas day (YYYY-MM-DD), default yesterday")
	flag.BoolVar(&opts.all, "all", false, "fetch every published revision, not only the latest")
	flag.Parse()

	logger := slog.New(logging.NewConsoleHandler(os.Stderr, slog.LevelWarn))
	slog.SetDefault(logger)

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		logger.Error("fetch failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, w io.Writer) error {
	from, to, err := dateRange(opts.from, opts.to, gasday.Today())
	if err != nil {
		return err
	}

	cnfg, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return err
	}

	client, err := mipi.New(ctx, slog.Default(), cnfg.Mipi.GetWsdlUrl(), &http.Client{Timeout: cnfg.Mipi.GetTimeout()})
	if err != nil {
		return err
	}

	var table *mipi.Table
	switch {
	case opts.report != "" && opts.code != "":
		return errors.New("use either -report or -code")
	case opts.report != "":
		table, err = client.Fetch(ctx, mipi.ResolveReport(opts.report), from, to, !opts.all)
	default:
		table, err = client.PhysicalFlows(ctx, from, to, opts.code, !opts.all)
	}
	if err != nil {
		return err
	}

	return writeCSV(w, table)
}

func dateRange(fromStr, toStr string, today gasday.Date) (gasday.Date, gasday.Date, error) {
	to := today.Sub(1)
	if toStr != "" {
		d, err := gasday.Parse(toStr)
		if err != nil {
			return "", "", fmt.Errorf("-to: %w", err)
		}
		to = d
	}

	from := to.Sub(29)
	if fromStr != "" {
		d, err := gasday.Parse(fromStr)
		if err != nil {
			return "", "", fmt.Errorf("-from: %w", err)
		}
		from = d
	}

	return from, to, nil
}

// writeCSV writes the columns as header, the Value column holds the parsed number.
func writeCSV(w io.Writer, table *mipi.Table) error {
	cw := csv.NewWriter(w)
	if table.IsEmpty() {
		cw.Flush()
		return cw.Error()
	}

	if err := cw.Write(table.Columns); err != nil {
		return err
	}

	row := make([]string, len(table.Columns))
	for _, r := range table.Records {
		for i, col := range table.Columns {
			if col == mipi.FieldValue {
				row[i] = strconv.FormatFloat(r.Value, 'f', -1, 64)
			} else {
				row[i], _ = r.Get(col)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
