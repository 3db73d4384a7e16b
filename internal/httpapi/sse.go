package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// sseWriter streams newline-delimited JSON frames as Server-Sent Events,
// adapted from the teacher's internal/web.sseWriter but emitting bare
// `data: <json>\n\n` lines (no `event:` field) to match spec.md §6's exact
// wire shape.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	log     *zap.Logger
}

// newSSEWriter prepares the response for event-stream output. Returns false
// if the underlying ResponseWriter doesn't support flushing.
func newSSEWriter(log *zap.Logger, w http.ResponseWriter) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &sseWriter{w: w, flusher: flusher, log: log}, true
}

func (s *sseWriter) writeJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("failed to marshal SSE frame", zap.Error(err))
		return
	}
	if _, err := s.w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
		s.log.Warn("failed to write SSE frame", zap.Error(err))
		return
	}
	s.flusher.Flush()
}
