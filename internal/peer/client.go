package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	sdk_client "github.com/mark3labs/mcp-go/client"
	sdk_transport "github.com/mark3labs/mcp-go/client/transport"
	sdk_mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/rca-orchestrator/orchestrator/internal/orcherr"
)

// ToolInfo captures the metadata of a single tool exposed by a peer.
type ToolInfo struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Client wraps the mcp-go SDK client for a single MCP peer, over either the
// SSE or streamable-HTTP transport. Safe for concurrent use (spec.md §4.A:
// "must be safe to call from multiple concurrent tasks").
type Client struct {
	mu    sync.RWMutex
	desc  Descriptor
	inner sdk_client.MCPClient
}

// NewClient creates an unconnected Client for the given peer descriptor.
// Call Connect to perform the MCP handshake before ListTools/CallTool.
func NewClient(desc Descriptor) *Client {
	return &Client{desc: desc}
}

// headerRoundTripper injects a fixed set of headers into every request —
// used for the SSE transport, whose mcp-go constructor takes a plain
// *http.Client rather than a header map option.
type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	return h.base.RoundTrip(req)
}

// Connect establishes the transport connection and performs the MCP
// initialize handshake. Handshake failure is reported to the caller but
// must never abort orchestrator startup (spec.md §4.A) — that is the
// Manager's responsibility, not this Client's.
func (c *Client) Connect(ctx context.Context) error {
	var inner sdk_client.MCPClient
	var err error

	switch c.desc.Transport {
	case TransportSSE:
		var opts []sdk_transport.ClientOption
		if len(c.desc.Headers) > 0 {
			opts = append(opts, sdk_transport.WithHTTPClient(&http.Client{
				Transport: &headerRoundTripper{base: http.DefaultTransport, headers: c.desc.Headers},
			}))
		}
		sseClient, serr := sdk_client.NewSSEMCPClient(c.desc.URL, opts...)
		if serr != nil {
			return fmt.Errorf("peer: create SSE client %q: %w", c.desc.Name, serr)
		}
		if err := sseClient.Start(ctx); err != nil {
			return fmt.Errorf("peer: start SSE client %q: %w", c.desc.Name, err)
		}
		inner = sseClient

	case TransportStreamableHTTP:
		var opts []sdk_transport.StreamableHTTPCOption
		if len(c.desc.Headers) > 0 {
			opts = append(opts, sdk_transport.WithHTTPHeaders(c.desc.Headers))
		}
		cli, serr := sdk_client.NewStreamableHttpClient(c.desc.URL, opts...)
		if serr != nil {
			return fmt.Errorf("peer: create streamable-HTTP client %q: %w", c.desc.Name, serr)
		}
		if err := cli.Start(ctx); err != nil {
			return fmt.Errorf("peer: start streamable-HTTP client %q: %w", c.desc.Name, err)
		}
		inner = cli

	default:
		return fmt.Errorf("peer: unknown transport %q for peer %q", c.desc.Transport, c.desc.Name)
	}

	_, err = inner.Initialize(ctx, sdk_mcp.InitializeRequest{
		Params: sdk_mcp.InitializeParams{
			ProtocolVersion: sdk_mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: sdk_mcp.Implementation{
				Name:    "mcp-rca-orchestrator",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		_ = inner.Close()
		return fmt.Errorf("peer: initialize %q: %w", c.desc.Name, err)
	}

	c.mu.Lock()
	c.inner = inner
	c.mu.Unlock()
	return nil
}

// ListTools returns metadata for all tools exposed by this peer.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	c.mu.RLock()
	inner := c.inner
	c.mu.RUnlock()

	if inner == nil {
		return nil, fmt.Errorf("peer: client %q not connected", c.desc.Name)
	}

	result, err := inner.ListTools(ctx, sdk_mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("peer: list tools %q: %w", c.desc.Name, err)
	}

	tools := make([]ToolInfo, 0, len(result.Tools))
	for _, t := range result.Tools {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			schema = json.RawMessage("{}")
		}
		tools = append(tools, ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	return tools, nil
}

// CallTool invokes the named tool on the peer with the given arguments and
// returns the concatenated text content.
//
// Failures are returned as one of two distinct orcherr kinds (spec.md
// §4.A/§7): a *orcherr.TransportError when the call never reached the peer
// or failed at the network layer, and a *orcherr.ToolError when the peer
// itself executed the tool and reported IsError=true.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	c.mu.RLock()
	inner := c.inner
	c.mu.RUnlock()

	if inner == nil {
		return "", &orcherr.TransportError{Peer: c.desc.Name, Tool: name, Err: fmt.Errorf("client not connected")}
	}

	req := sdk_mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := inner.CallTool(ctx, req)
	if err != nil {
		return "", &orcherr.TransportError{Peer: c.desc.Name, Tool: name, Err: err}
	}

	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(sdk_mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	text := strings.Join(parts, "\n")

	if result.IsError {
		return "", &orcherr.ToolError{Peer: c.desc.Name, Tool: name, Payload: text}
	}
	return text, nil
}

// Close terminates the connection and releases resources. Outstanding
// in-flight invocations are cancelled via their own context; Close itself
// just releases the transport.
func (c *Client) Close() error {
	c.mu.Lock()
	inner := c.inner
	c.inner = nil
	c.mu.Unlock()

	if inner == nil {
		return nil
	}
	return inner.Close()
}
