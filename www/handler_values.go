package www

import (
	"log/slog"
	"net/http"

	"github.com/icodeforyou/mipi-go/database"
	"github.com/icodeforyou/mipi-go/slice"
)

type valueResponse struct {
	GasDay           string  `json:"gasDay"`
	ApplicableAt     string  `json:"applicableAt"`
	Value            float64 `json:"value"`
	QualityIndicator string  `json:"qualityIndicator,omitempty"`
	Substituted      string  `json:"substituted,omitempty"`
	GeneratedAt      string  `json:"generatedAt,omitempty"`
}

// NewValuesHandler returns the latest value per gas day, or every stored
// revision with all=true.
func NewValuesHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
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

		var rows []database.ReportValueRow
		if r.URL.Query().Get("all") == "true" {
			rows, err = db.GetReportValues(r.Context(), q.Report, q.From, q.To)
		} else {
			rows, err = db.GetReportSeries(r.Context(), q.Report, q.From, q.To)
		}
		if err != nil {
			logger.Error("handling values request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(logger, w, slice.Map(rows, func(row database.ReportValueRow) valueResponse {
			return valueResponse{
				GasDay:           row.GasDay.String(),
				ApplicableAt:     row.ApplicableAt,
				Value:            row.Value,
				QualityIndicator: row.QualityIndicator,
				Substituted:      row.Substituted,
				GeneratedAt:      row.GeneratedAt,
			}
		}))
	}
}
