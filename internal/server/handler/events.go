package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// streamCursor matches stream ids such as "0", "1718000000000-0" or "42-0".
var streamCursor = regexp.MustCompile(`^[0-9]+(-[0-9]+)?$`)

// EventReader replays the engine event stream.
type EventReader interface {
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]domain.StreamMessage, error)
}

// EventHandler serves the engine event replay.
type EventHandler struct {
	reader EventReader
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(reader EventReader, logger *slog.Logger) *EventHandler {
	return &EventHandler{reader: reader, logger: logger}
}

type streamedEvent struct {
	StreamID string          `json:"stream_id"`
	Event    json.RawMessage `json:"event"`
}

// ListEvents returns up to limit events recorded after the stream id in
// after. Pass next back as after to continue.
// GET /api/events?after=0&limit=100
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	after := r.URL.Query().Get("after")
	if after == "" {
		after = "0"
	}
	if !streamCursor.MatchString(after) {
		writeError(w, http.StatusBadRequest, "after must be a stream id")
		return
	}
	limit, err := queryInt(r, "limit", defaultEventLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	limit = min(limit, maxEventLimit)

	msgs, err := h.reader.StreamRead(r.Context(), domain.StreamEngine, after, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to read events")
		return
	}

	events := make([]streamedEvent, 0, len(msgs))
	next := after
	for _, m := range msgs {
		if !json.Valid(m.Payload) {
			continue
		}
		events = append(events, streamedEvent{StreamID: m.ID, Event: m.Payload})
		next = m.ID
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"next":   next,
	})
}
