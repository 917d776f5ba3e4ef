package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/sse"
)

const eventsKeepalive = 30 * time.Second

type EventsHandler interface {
	// Stream returns a text/event-stream handler for one topic
	Stream(topic string) http.HandlerFunc
}

type eventsHandlerImpl struct {
	hub       *sse.Hub
	keepalive time.Duration
}

func NewEventsHandler(hub *sse.Hub) EventsHandler {
	return &eventsHandlerImpl{hub: hub, keepalive: eventsKeepalive}
}

func (h *eventsHandlerImpl) Stream(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		events, cleanup := h.hub.Subscribe(topic)
		defer cleanup()

		fmt.Fprintf(w, "event: connected\ndata: {\"topic\":%q}\n\n", topic)
		flusher.Flush()

		keepalive := time.NewTicker(h.keepalive)
		defer keepalive.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := sse.WriteEvent(w, event); err != nil {
					slog.WarnContext(r.Context(), "failed to write event", "topic", topic, "error", err)
					continue
				}
				flusher.Flush()

			case <-keepalive.C:
				fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
				flusher.Flush()

			case <-r.Context().Done():
				return
			}
		}
	}
}
