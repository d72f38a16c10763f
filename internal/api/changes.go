package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"techcrew/internal/models"
)

const keepAliveInterval = 25 * time.Second

var knownTables = map[string]bool{
	"":                     true,
	models.TableBands:      true,
	models.TableGigLogs:    true,
	models.TableSchedules:  true,
	models.TableIssues:     true,
	models.TableInventory:  true,
	models.TableCategories: true,
}

// changes streams row changes as server-sent events. An empty table
// parameter streams every table.
func (s *Server) changes(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if !knownTables[table] {
		s.fail(w, r, "invalid query", &models.FieldError{Field: "table", Reason: "is not a known table"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.fail(w, r, "streaming unsupported", errors.New("response writer cannot flush"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	events := s.Changes.Subscribe(ctx, table)

	fmt.Fprintf(w, "event: connected\ndata: {\"table\":%q}\n\n", table)
	flusher.Flush()
	s.Log.Debug("SSE", fmt.Sprintf("client subscribed to %q", table))

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case c, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(c)
			if err != nil {
				s.Log.Error("SSE", fmt.Sprintf("failed to encode change: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-ctx.Done():
			s.Log.Debug("SSE", fmt.Sprintf("client left %q", table))
			return
		}
	}
}
