package www

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/icodeforyou/mipi-go/gasday"
	"github.com/icodeforyou/mipi-go/mipi"
)

const (
	defaultRangeDays = 30
	maxRangeDays     = 3660
)

func intOrDefault(u *url.URL, key string, defaultValue int) int {
	if v := u.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func dateOrDefault(u *url.URL, key string, defaultValue gasday.Date) (gasday.Date, error) {
	v := u.Query().Get(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := gasday.Parse(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

type reportQuery struct {
	Report string
	From   gasday.Date
	To     gasday.Date
}

// parseReportQuery reads report, from and to. The range defaults to the
// last 30 gas days ending yesterday and spans at most maxRangeDays.
func parseReportQuery(u *url.URL) (reportQuery, error) {
	q := reportQuery{Report: mipi.ResolveReport(u.Query().Get("report"))}
	if q.Report == "" {
		return q, fmt.Errorf("missing report")
	}

	var err error
	if q.To, err = dateOrDefault(u, "to", gasday.Today().Sub(1)); err != nil {
		return q, err
	}
	if q.From, err = dateOrDefault(u, "from", q.To.Sub(defaultRangeDays-1)); err != nil {
		return q, err
	}
	if q.From.After(q.To) {
		return q, fmt.Errorf("from %s is after to %s", q.From, q.To)
	}
	if days := q.From.DaysUntil(q.To) + 1; days > maxRangeDays {
		return q, fmt.Errorf("range of %d gas days exceeds the maximum of %d", days, maxRangeDays)
	}
	return q, nil
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("encoding response", slog.Any("error", err))
		http.Error(w, "unable to encode response", http.StatusInternalServerError)
	}
}
