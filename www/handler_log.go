package www

import (
	"log/slog"
	"net/http"

	"github.com/icodeforyou/mipi-go/database"
	"github.com/icodeforyou/mipi-go/logging"
)

type logResponse struct {
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
	Entries  []database.LogEntryRow `json:"entries"`
}

func NewLogHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		page := max(intOrDefault(r.URL, "page", 1), 1)
		pageSize := intOrDefault(r.URL, "pageSize", 25)
		if pageSize < 1 {
			pageSize = 25
		}

		minLvl := slog.LevelDebug
		if lvl := r.URL.Query().Get("level"); lvl != "" {
			minLvl = logging.LevelFromString(&lvl)
		}

		e, err := db.GetLogEntries(r.Context(), minLvl, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(logger, w, logResponse{Page: page, PageSize: pageSize, Entries: e})
	}
}
