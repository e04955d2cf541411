package http

import (
	"net/http"
	"strconv"

	"github.com/mind-engage/formbuilder/internal/eventlog"
)

// GET /api/events?after=&limit= pages through the event log by sequence.
func ListEventsHandler(repo *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		events, err := repo.Since(r.Context(), after, parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			writeError(w, err)
			return
		}
		next := after
		if n := len(events); n > 0 {
			next = events[n-1].Seq
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events, "next": next})
	}
}
