package eventstream

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
	"github.com/rca-orchestrator/orchestrator/internal/util"
)

// maxArgsShown and maxArgRepr bound the tool_call message formatting
// (spec.md §4.I: "at most three argument pairs and each repr truncated to
// 30 characters").
const (
	maxArgsShown = 3
	maxArgRepr   = 30
)

// Bridge converts an Agent Runtime event stream into canonical outbound
// frames. `text` events are accumulated and never forwarded individually;
// the accumulated (or, if the runtime already assembled one, the explicit)
// final text is emitted once as a single `complete` frame (spec.md §4.I).
func Bridge(events <-chan agentruntime.Event, userID, sessionID string) <-chan Frame {
	out := make(chan Frame, 8)
	go bridge(events, userID, sessionID, out)
	return out
}

func bridge(events <-chan agentruntime.Event, userID, sessionID string, out chan<- Frame) {
	defer close(out)

	var textBuf strings.Builder
	for ev := range events {
		switch ev.Kind {
		case agentruntime.EventStatus:
			out <- Frame{Type: FrameStatus, Message: ev.StatusText}

		case agentruntime.EventToolCall:
			out <- Frame{
				Type:     FrameToolCall,
				Message:  formatToolCall(ev.QualifiedName, ev.Args),
				ToolName: ev.QualifiedName,
				Args:     ev.Args,
			}

		case agentruntime.EventToolResult:
			// Not part of the canonical outbound stream (spec.md §4.I only
			// lists status/tool_call/error/complete); tool_result stays
			// internal to the runtime/RCA coordinator.

		case agentruntime.EventText:
			textBuf.WriteString(ev.TextChunk)

		case agentruntime.EventError:
			out <- Frame{Type: FrameError, Message: ev.ErrMessage}

		case agentruntime.EventFinal:
			text := ev.FinalText
			if text == "" {
				text = textBuf.String()
			}
			out <- Frame{Type: FrameComplete, Response: text, UserID: userID, SessionID: sessionID}
		}
	}
}

// formatToolCall renders "🔧 Calling: <name>(<arg1>=<repr1>, …)" with at
// most three argument pairs, sorted by key for deterministic output, each
// repr truncated to 30 runes.
func formatToolCall(name string, args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxArgsShown {
		keys = keys[:maxArgsShown]
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		repr := fmt.Sprintf("%v", args[k])
		parts = append(parts, fmt.Sprintf("%s=%s", k, util.TruncateRunes(repr, maxArgRepr)))
	}
	return fmt.Sprintf("🔧 Calling: %s(%s)", name, strings.Join(parts, ", "))
}
