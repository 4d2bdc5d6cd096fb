package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const eventBufferSize = 64

// streamEvents sends bus events to the client as server-sent events until
// the request ends.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	doc := r.URL.Query().Get("document")

	id, events := s.bus.Subscribe(eventBufferSize)
	defer s.bus.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if doc != "" && event.Document != doc {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.ErrorContext(ctx, "failed to encode event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
