package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
	"github.com/rca-orchestrator/orchestrator/internal/peer"
)

// fakeLLM answers immediately with no tool calls, so Runtime.Run finishes in
// one round-trip; reports are derived from the agent's Name so each branch
// is independently identifiable in the synthesized report.
type fakeLLM struct {
	fail map[string]bool // agent name -> force an error
}

func (f *fakeLLM) CallWithTools(ctx context.Context, messages []agentruntime.Message, tools []agentruntime.ToolDefinition) (agentruntime.Message, error) {
	system := messages[0].Content
	if f.fail != nil {
		for name := range f.fail {
			if strings.Contains(system, name) {
				return agentruntime.Message{}, fmt.Errorf("simulated failure for %s", name)
			}
		}
	}
	return agentruntime.Message{Role: agentruntime.RoleAssistant, Content: "report from " + system}, nil
}

func noopInvoker(ctx context.Context, qualifiedName string, args map[string]any) (string, error) {
	return "", fmt.Errorf("not expected to be called")
}

func noSessionView(string) []agentruntime.Message { return nil }

func testRCAPeers(names ...string) []*peer.Peer {
	out := make([]*peer.Peer, 0, len(names))
	for _, n := range names {
		out = append(out, &peer.Peer{Descriptor: peer.Descriptor{Name: n}})
	}
	return out
}

func testRCAAgents(names ...string) map[string]agentruntime.Agent {
	agents := make(map[string]agentruntime.Agent, len(names))
	for _, n := range names {
		agents[n] = agentruntime.Agent{Name: n, Instruction: n}
	}
	return agents
}

func TestInvestigate_ReportOrderMatchesRegistrationOrder(t *testing.T) {
	peers := testRCAPeers("kubernetes", "jenkins")
	agents := testRCAAgents("kubernetes", "jenkins")
	rt := agentruntime.New(zap.NewNop(), &fakeLLM{}, noopInvoker)
	coord := NewRCACoordinator(zap.NewNop(), peers, agents, rt)

	report := coord.Investigate(context.Background(), "s1", "it's broken", noSessionView)

	kIdx := strings.Index(report, "## kubernetes")
	jIdx := strings.Index(report, "## jenkins")
	if kIdx == -1 || jIdx == -1 {
		t.Fatalf("report missing expected sections:\n%s", report)
	}
	if kIdx > jIdx {
		t.Errorf("report section order: kubernetes (%d) should precede jenkins (%d), registration order", kIdx, jIdx)
	}
}

func TestInvestigate_OneBranchFailureDoesNotAbortOthers(t *testing.T) {
	peers := testRCAPeers("jenkins", "kubernetes")
	agents := testRCAAgents("jenkins", "kubernetes")
	rt := agentruntime.New(zap.NewNop(), &fakeLLM{fail: map[string]bool{"jenkins": true}}, noopInvoker)
	coord := NewRCACoordinator(zap.NewNop(), peers, agents, rt)

	report := coord.Investigate(context.Background(), "s1", "it's broken", noSessionView)

	if !strings.Contains(report, "❌ Error during investigation") {
		t.Error("expected the failing branch's error to appear in the report")
	}
	if !strings.Contains(report, "report from kubernetes") {
		t.Error("expected the healthy branch's report to still appear despite the other's failure")
	}
}

func TestInvestigate_EmptyPeerListProducesEmptyReport(t *testing.T) {
	rt := agentruntime.New(zap.NewNop(), &fakeLLM{}, noopInvoker)
	coord := NewRCACoordinator(zap.NewNop(), nil, nil, rt)

	report := coord.Investigate(context.Background(), "s1", "it's broken", noSessionView)
	if !strings.Contains(report, "Parallel Root Cause Analysis Report") {
		t.Error("expected the report header even with zero specialists")
	}
}
