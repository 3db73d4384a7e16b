// Package agentruntime implements the Agent Runtime Adapter (spec.md
// §4.C): given an instruction, a tool set and a conversation turn, it
// drives the LLM through a tool-call loop and emits a stream of Events.
package agentruntime

import (
	"context"
	"encoding/json"
)

// Message is one turn of LLM-facing conversation, OpenAI chat-completions
// shaped (role/content plus the tool-calling fields), following the
// teacher's internal/llm.Message generalized with the tool-call fields the
// teacher's CallLLMWithTools also needs.
type Message struct {
	Role       string
	Content    string
	Name       string // required on role=tool messages
	ToolCallID string // required on role=tool messages
	ToolCalls  []ToolCall
}

// ToolCall is one function-call the model asked for.
type ToolCall struct {
	ID        string
	Name      string // qualified tool name
	Arguments json.RawMessage
}

// ToolDefinition is the function-calling schema for one tool, as handed to
// the LLM client.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  any // JSON Schema object
}

// Role constants, matching the teacher's llm.Role* constants plus the
// tool role Function Calling requires.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// EventKind tags the Event union (spec.md §3).
type EventKind string

const (
	EventStatus     EventKind = "status"
	EventToolCall   EventKind = "tool_call"
	EventToolResult EventKind = "tool_result"
	EventText       EventKind = "text"
	EventError      EventKind = "error"
	EventFinal      EventKind = "final"
)

// Event is the tagged union produced by a Runtime and consumed by the
// Event Stream Bridge. Only the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind

	StatusText string // status

	QualifiedName string         // tool_call, tool_result
	Args          map[string]any // tool_call
	Payload       string         // tool_result
	ToolErr       bool           // tool_result: true if the invocation failed

	TextChunk string // text

	ErrMessage string // error
	Cancelled  bool   // error: true if the error is a cancellation

	FinalText string // final
}

// ToolInvoker calls a single qualified tool name with the given arguments
// and returns its text payload, or an error. Supplied by the orchestrator
// so the Runtime itself never imports the registry or peer packages
// directly — it only knows how to call "some tool by qualified name".
type ToolInvoker func(ctx context.Context, qualifiedName string, args map[string]any) (string, error)

// LLMClient is the subset of an OpenAI-compatible client the Runtime
// needs: a single Function-Calling-capable completion call.
type LLMClient interface {
	CallWithTools(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error)
}

// Agent is a stateless runtime configuration: instruction, tool set and
// model identifier (spec.md §3's Agent data model). Agents carry no
// cross-invocation state; everything variable is passed into Run.
type Agent struct {
	Name        string
	Model       string
	Instruction string
	Tools       []ToolDefinition
	Description string
}
