package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// handleStream pushes record snapshots over server-sent events. Each
// subscriber gets its own live query: the first event carries the current
// full set, later events replace it wholesale after every change.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub, err := s.live.Subscribe(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to open live query", "error", err)
		writeError(w, http.StatusInternalServerError, "could not open stream")
		return
	}
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-sub.Snapshots:
			if !ok {
				return
			}
			records := make([]expenseJSON, 0, len(snap))
			for _, e := range snap {
				records = append(records, toExpenseJSON(e))
			}
			payload, err := json.Marshal(records)
			if err != nil {
				slog.ErrorContext(r.Context(), "Failed to encode snapshot", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		case err := <-sub.Errs:
			slog.ErrorContext(r.Context(), "Live query error on stream", "error", err)
			if _, werr := fmt.Fprintf(w, "event: stale\ndata: {}\n\n"); werr != nil {
				return
			}
			flusher.Flush()
		}
	}
}
