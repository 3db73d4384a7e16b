package orchestrator

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
	"github.com/rca-orchestrator/orchestrator/internal/peer"
	"github.com/rca-orchestrator/orchestrator/internal/registry"
	"github.com/rca-orchestrator/orchestrator/internal/session"
)

// blockingLLM never returns on its own; it only resolves once ctx is
// cancelled, so it's used to exercise the overall-turn-timeout wiring
// without a real deadline race.
type blockingLLM struct{}

func (blockingLLM) CallWithTools(ctx context.Context, messages []agentruntime.Message, tools []agentruntime.ToolDefinition) (agentruntime.Message, error) {
	<-ctx.Done()
	return agentruntime.Message{}, ctx.Err()
}

func testOrchestrator(t *testing.T, llm agentruntime.LLMClient, overallTimeout time.Duration) *Orchestrator {
	t.Helper()
	log := zap.NewNop()
	peers := peer.NewManager(log)
	reg := registry.Build(log, peers.List())
	store, err := session.NewStore(log, t.TempDir())
	if err != nil {
		t.Fatalf("session.NewStore() error: %v", err)
	}
	return New(log, "test-model", peers, reg, llm, store, 5*time.Second, overallTimeout)
}

func TestHandleTurn_OverallTimeoutEmitsCancelledError(t *testing.T) {
	o := testOrchestrator(t, blockingLLM{}, 20*time.Millisecond)

	var sawCancelled bool
	for ev := range o.HandleTurn(context.Background(), "s1", "u1", "hello") {
		if ev.Kind == agentruntime.EventError && ev.Cancelled {
			sawCancelled = true
		}
	}
	if !sawCancelled {
		t.Error("expected a cancelled error event once the overall timeout elapsed")
	}
}

func TestHandleTurn_ZeroOverallTimeoutNeverCancels(t *testing.T) {
	o := testOrchestrator(t, &fakeLLM{}, 0)

	var sawFinal bool
	for ev := range o.HandleTurn(context.Background(), "s1", "u1", "hello") {
		if ev.Kind == agentruntime.EventFinal {
			sawFinal = true
		}
		if ev.Kind == agentruntime.EventError && ev.Cancelled {
			t.Error("unset overall timeout should never produce a cancellation")
		}
	}
	if !sawFinal {
		t.Error("expected a final event")
	}
}
