package www

import (
	"log/slog"
	"net/http"

	"github.com/icodeforyou/mipi-go/database"
	"github.com/icodeforyou/mipi-go/gasday"
	"github.com/icodeforyou/mipi-go/slice"
	"github.com/icodeforyou/mipi-go/www/chartjs"
)

func NewChartHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q, err := parseReportQuery(r.URL)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		series, err := db.GetReportSeries(r.Context(), q.Report, q.From, q.To)
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(logger, w, ReportChart(q.Report, q.From, q.To, series))
	}
}

// ReportChart plots one value per gas day, days without a value are gaps.
func ReportChart(report string, from, to gasday.Date, series []database.ReportValueRow) chartjs.Chart {
	days := from.Range(to)
	chart := chartjs.NewChart(report, slice.Map(days, gasday.Date.String)).
		WithXTitle("Gas day").
		WithYTitle(report)

	values := make(map[gasday.Date]float64, len(series))
	for _, row := range series {
		values[row.GasDay] = row.Value
	}
	for i, day := range days {
		if v, found := values[day]; found {
			chart.Data.Datasets[0].Data[i] = chartjs.FixedFloat64(v, 4)
		}
	}

	return chart
}
