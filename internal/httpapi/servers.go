package httpapi

import "net/http"

// serverInfo projects a peer.Descriptor for GET /servers, omitting
// transport headers (which may carry bearer tokens).
type serverInfo struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Transport   string   `json:"transport"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	descs := s.orch.PeerDescriptors()
	out := make([]serverInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, serverInfo{
			Name:        d.Name,
			URL:         d.URL,
			Transport:   string(d.Transport),
			Description: d.Description,
			Keywords:    d.Keywords,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}
