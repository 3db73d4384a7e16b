package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/orcherr"
	"github.com/rca-orchestrator/orchestrator/internal/session"
)

type deleteResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// handleListSessions implements GET /sessions?user_id=….
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	summaries, err := s.store.List(userID)
	if err != nil {
		s.log.Error("failed to list sessions", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []session.Summary{}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

// handleGetSession implements GET /sessions/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := s.store.Get(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// handleDeleteSession implements DELETE /sessions/{id}.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(id); err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, deleteResponse{Status: "deleted", SessionID: id})
}

// handleResumeSession implements POST /sessions/{id}/resume: validates the
// session exists (404 otherwise, spec.md §4.J) and returns its full detail
// so a client can rehydrate its local view before continuing the
// conversation.
func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := s.store.Get(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// writeSessionError maps SessionNotFound to 404 and everything else to a
// generic 500, never leaking internals past the API boundary (spec.md §7).
func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	var notFound *orcherr.SessionNotFound
	if errors.As(err, &notFound) {
		http.Error(w, notFound.Error(), http.StatusNotFound)
		return
	}
	s.log.Error("session store error", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}
