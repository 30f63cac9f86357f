package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMessage writes the legacy `{message}` envelope.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// RouteNotValid is the legacy catch-all for a known path hit with the
// wrong method. The original surface answered those with a 500.
func RouteNotValid(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusInternalServerError, "Route not valid")
}

// queryID parses the legacy `?_id=` query parameter.
func queryID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get("_id"), 10, 64)
}

// parseDate accepts the two date shapes legacy clients send.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
