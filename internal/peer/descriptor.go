// Package peer implements the MCP Peer Connector (spec.md §4.A): one
// long-lived connection per configured MCP server, exposing list_tools and
// invoke over either the SSE or streamable-HTTP transport.
package peer

// Transport identifies the wire protocol used to reach a peer.
type Transport string

const (
	TransportSSE            Transport = "sse"
	TransportStreamableHTTP Transport = "streamable-http"
)

// Descriptor describes one configured MCP server. Descriptors are created
// at startup from configuration, immutable for the process lifetime, and
// owned by the Orchestrator (spec.md §3).
type Descriptor struct {
	// Name is the peer's unique identifier, used to qualify tool names and
	// as the key in per-peer keyword lists.
	Name string `yaml:"-"`

	URL         string            `yaml:"url"`
	Transport   Transport         `yaml:"transport"`
	Enabled     bool              `yaml:"enabled"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	Description string            `yaml:"description"`

	// Keywords is this peer's platform-specificity keyword list
	// (spec.md §4.F). Nil means "use the built-in default list for this
	// peer name, if one exists."
	Keywords []string `yaml:"keywords,omitempty"`
}
