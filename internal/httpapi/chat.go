package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
	"github.com/rca-orchestrator/orchestrator/internal/eventstream"
	"github.com/rca-orchestrator/orchestrator/internal/session"
)

// chatRequest is the POST /chat and /chat/stream request body (spec.md §6).
type chatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// chatResponse is the POST /chat synchronous response body.
type chatResponse struct {
	Response  string `json:"response"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// decodeChatRequest parses the body and auto-generates user_id/session_id
// when the caller omits them (spec.md §4.J: "per-request missing ids are
// auto-generated").
func decodeChatRequest(r *http.Request) (chatRequest, error) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return chatRequest{}, err
	}
	if req.UserID == "" {
		req.UserID = session.NewUserID()
	}
	if req.SessionID == "" {
		req.SessionID = session.NewID()
	}
	return req, nil
}

// handleChat implements POST /chat: blocks until the turn's `final` event,
// returning the combined text.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	var finalText string
	for ev := range s.orch.HandleTurn(r.Context(), req.SessionID, req.UserID, req.Message) {
		if ev.Kind == agentruntime.EventFinal {
			finalText = ev.FinalText
		}
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		Response:  finalText,
		UserID:    req.UserID,
		SessionID: req.SessionID,
	})
}

// handleChatStream implements POST /chat/stream: SSE of the canonical
// outbound frame stream, via the Event Stream Bridge.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	sw, ok := newSSEWriter(s.log, w)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := s.orch.HandleTurn(r.Context(), req.SessionID, req.UserID, req.Message)
	for frame := range eventstream.Bridge(events, req.UserID, req.SessionID) {
		sw.writeJSON(frame)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode JSON response", zap.Error(err))
	}
}
