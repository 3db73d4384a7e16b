// Package eventstream implements the Event Stream Bridge (spec.md §4.I):
// it converts an Agent Runtime's internal Event stream into the uniform
// outbound frame shapes the HTTP/SSE API exposes.
package eventstream

// FrameType tags the canonical outbound frame.
type FrameType string

const (
	FrameStatus   FrameType = "status"
	FrameToolCall FrameType = "tool_call"
	FrameError    FrameType = "error"
	FrameComplete FrameType = "complete"
)

// Frame is one canonical outbound SSE frame (spec.md §6's `POST
// /chat/stream` shape). Only the fields relevant to Type are populated.
type Frame struct {
	Type FrameType `json:"type"`

	Message string `json:"message,omitempty"` // status, tool_call, error

	ToolName string         `json:"tool_name,omitempty"` // tool_call
	Args     map[string]any `json:"args,omitempty"`      // tool_call

	Response  string `json:"response,omitempty"`   // complete
	UserID    string `json:"user_id,omitempty"`    // complete
	SessionID string `json:"session_id,omitempty"` // complete
}
