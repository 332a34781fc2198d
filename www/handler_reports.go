package www

import (
	"log/slog"
	"net/http"

	"github.com/icodeforyou/mipi-go/database"
	"github.com/icodeforyou/mipi-go/slice"
)

type reportResponse struct {
	Report      string `json:"report"`
	FirstGasDay string `json:"firstGasDay"`
	LastGasDay  string `json:"lastGasDay"`
	NoOfValues  int    `json:"noOfValues"`
}

func NewReportsHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		reports, err := db.GetReports(r.Context())
		if err != nil {
			logger.Error("handling reports request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(logger, w, slice.Map(reports, func(row database.ReportSummaryRow) reportResponse {
			return reportResponse{
				Report:      row.Report,
				FirstGasDay: row.FirstGasDay.String(),
				LastGasDay:  row.LastGasDay.String(),
				NoOfValues:  row.Count,
			}
		}))
	}
}
