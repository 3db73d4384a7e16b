package eventstream

import (
	"strings"
	"testing"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
)

func drainFrames(events <-chan agentruntime.Event) []Frame {
	out := make(chan Frame, 8)
	go func() {
		defer close(out)
		for f := range Bridge(events, "user_1", "session_1") {
			out <- f
		}
	}()
	var frames []Frame
	for f := range out {
		frames = append(frames, f)
	}
	return frames
}

func feed(events ...agentruntime.Event) <-chan agentruntime.Event {
	ch := make(chan agentruntime.Event, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}

func TestBridge_StatusPassesThroughVerbatim(t *testing.T) {
	frames := drainFrames(feed(
		agentruntime.Event{Kind: agentruntime.EventStatus, StatusText: "thinking…"},
		agentruntime.Event{Kind: agentruntime.EventFinal, FinalText: "done"},
	))
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Type != FrameStatus || frames[0].Message != "thinking…" {
		t.Errorf("frames[0] = %+v", frames[0])
	}
}

func TestBridge_TextAccumulatesIntoSingleComplete(t *testing.T) {
	frames := drainFrames(feed(
		agentruntime.Event{Kind: agentruntime.EventText, TextChunk: "hello "},
		agentruntime.Event{Kind: agentruntime.EventText, TextChunk: "world"},
		agentruntime.Event{Kind: agentruntime.EventFinal},
	))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want exactly 1 complete frame", len(frames))
	}
	if frames[0].Type != FrameComplete || frames[0].Response != "hello world" {
		t.Errorf("frames[0] = %+v", frames[0])
	}
	if frames[0].UserID != "user_1" || frames[0].SessionID != "session_1" {
		t.Errorf("complete frame missing user/session ids: %+v", frames[0])
	}
}

func TestBridge_FinalTextOverridesAccumulatedText(t *testing.T) {
	frames := drainFrames(feed(
		agentruntime.Event{Kind: agentruntime.EventText, TextChunk: "draft"},
		agentruntime.Event{Kind: agentruntime.EventFinal, FinalText: "the real synthesized report"},
	))
	if frames[0].Response != "the real synthesized report" {
		t.Errorf("Response = %q, want the explicit FinalText", frames[0].Response)
	}
}

func TestBridge_ToolCallFormatsNameAndArgs(t *testing.T) {
	frames := drainFrames(feed(
		agentruntime.Event{Kind: agentruntime.EventToolCall, QualifiedName: "jenkins__get_build_status", Args: map[string]any{"build": "42"}},
		agentruntime.Event{Kind: agentruntime.EventFinal},
	))
	if frames[0].Type != FrameToolCall {
		t.Fatalf("frames[0].Type = %v", frames[0].Type)
	}
	if frames[0].ToolName != "jenkins__get_build_status" {
		t.Errorf("ToolName = %q", frames[0].ToolName)
	}
	if !strings.Contains(frames[0].Message, "jenkins__get_build_status") || !strings.Contains(frames[0].Message, "build=42") {
		t.Errorf("Message = %q, want it to mention tool name and args", frames[0].Message)
	}
}

func TestBridge_ToolCallLimitsToThreeArgsSortedByKey(t *testing.T) {
	frames := drainFrames(feed(
		agentruntime.Event{Kind: agentruntime.EventToolCall, QualifiedName: "t", Args: map[string]any{
			"z": "1", "a": "2", "m": "3", "b": "4",
		}},
		agentruntime.Event{Kind: agentruntime.EventFinal},
	))
	msg := frames[0].Message
	if strings.Count(msg, "=") != 3 {
		t.Errorf("Message = %q, want exactly 3 arg pairs", msg)
	}
	if !strings.Contains(msg, "a=2") || !strings.Contains(msg, "b=4") || !strings.Contains(msg, "m=3") {
		t.Errorf("Message = %q, want the three lexicographically-first keys", msg)
	}
}

func TestBridge_ErrorPassesThrough(t *testing.T) {
	frames := drainFrames(feed(
		agentruntime.Event{Kind: agentruntime.EventError, ErrMessage: "boom"},
		agentruntime.Event{Kind: agentruntime.EventFinal},
	))
	if frames[0].Type != FrameError || frames[0].Message != "boom" {
		t.Errorf("frames[0] = %+v", frames[0])
	}
}

func TestBridge_ToolResultIsNotForwarded(t *testing.T) {
	frames := drainFrames(feed(
		agentruntime.Event{Kind: agentruntime.EventToolResult, QualifiedName: "t", Payload: "x"},
		agentruntime.Event{Kind: agentruntime.EventFinal},
	))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want exactly 1 (tool_result dropped)", len(frames))
	}
	if frames[0].Type != FrameComplete {
		t.Errorf("frames[0].Type = %v, want complete", frames[0].Type)
	}
}
