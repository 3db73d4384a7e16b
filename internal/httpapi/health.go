package httpapi

import "net/http"

// healthResponse is the GET /health response body (spec.md §6). The
// composition root only constructs a Server after the Orchestrator has
// finished connecting peers, so by the time any request reaches here
// initialization has always succeeded — there is no "error" state to
// report short of the process failing to start at all.
type healthResponse struct {
	Status     string   `json:"status"`
	Model      string   `json:"model"`
	MCPServers []string `json:"mcp_servers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:     "healthy",
		Model:      s.model,
		MCPServers: s.orch.ConnectedPeerNames(),
	})
}
