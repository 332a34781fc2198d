package www

import (
	"log/slog"
	"net/http"
)

// NewSyncHandler starts the sync task in the background.
func NewSyncHandler(logger *slog.Logger, task func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		logger.Info("report sync requested", slog.String("remoteAddr", r.RemoteAddr))
		go task()
		w.WriteHeader(http.StatusAccepted)
	}
}
