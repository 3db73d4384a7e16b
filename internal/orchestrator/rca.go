package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
	"github.com/rca-orchestrator/orchestrator/internal/peer"
)

// rcaEnvelope wraps the user's text in the fixed instruction every
// specialist receives (spec.md §4.G).
const rcaEnvelope = "A user reported the following issue. Investigate it using your own tools " +
	"and respond with your structured report.\n\nUser report: %s"

// branchResult is one specialist's outcome, reported into its own result
// slot rather than a shared channel so registration order is preserved
// independent of completion order (spec.md §4.G/§5).
type branchResult struct {
	peerName string
	report   string
	err      error
}

// RCACoordinator is the Parallel RCA Coordinator (spec.md §4.G): fans a
// user turn out to every Specialist Agent concurrently and synthesizes a
// single deterministic report.
type RCACoordinator struct {
	log     *zap.Logger
	peers   []*peer.Peer // registration order
	agents  map[string]agentruntime.Agent
	runtime *agentruntime.Runtime
}

// NewRCACoordinator creates a coordinator over the given peers (in
// registration order) and their specialist agents.
func NewRCACoordinator(log *zap.Logger, peers []*peer.Peer, agents map[string]agentruntime.Agent, runtime *agentruntime.Runtime) *RCACoordinator {
	return &RCACoordinator{log: log, peers: peers, agents: agents, runtime: runtime}
}

// SessionViewFunc supplies the agent-runtime message history for a derived
// per-peer session id.
type SessionViewFunc func(derivedSessionID string) []agentruntime.Message

// Investigate runs every specialist concurrently against userText, each
// addressed with its own derived session id (`<sessionID>_<peerName>`) so
// runtime memory stays isolated per peer, waits for every branch to finish
// — never aborting on the first failure — and returns the synthesized
// report (spec.md §4.G).
//
// Fan-out uses a bare errgroup.Group (not errgroup.WithContext): its Go/Wait
// convenience is used purely as a WaitGroup, deliberately without the
// context-cancel-on-first-error behavior errgroup.WithContext would add,
// since one branch's failure must never cancel its siblings.
func (c *RCACoordinator) Investigate(ctx context.Context, sessionID, userText string, sessionView SessionViewFunc) string {
	results := make([]branchResult, len(c.peers))

	var g errgroup.Group
	for i, p := range c.peers {
		i, p := i, p
		g.Go(func() error {
			results[i] = c.runBranch(ctx, sessionID, p.Descriptor.Name, userText, sessionView)
			return nil
		})
	}
	_ = g.Wait()

	names := make([]string, len(c.peers))
	for i, p := range c.peers {
		names[i] = p.Descriptor.Name
	}
	return synthesize(userText, names, results)
}

func (c *RCACoordinator) runBranch(ctx context.Context, sessionID, peerName, userText string, sessionView SessionViewFunc) branchResult {
	agent, ok := c.agents[peerName]
	if !ok {
		return branchResult{peerName: peerName, err: fmt.Errorf("no specialist agent registered for peer %q", peerName)}
	}

	derivedID := sessionID + "_" + peerName
	envelope := fmt.Sprintf(rcaEnvelope, userText)

	events := c.runtime.Run(ctx, agent, sessionView(derivedID), envelope)
	text, err := drainFinalText(events)
	if err != nil {
		c.log.Warn("specialist investigation failed",
			zap.String("peer", peerName), zap.Error(err))
		return branchResult{peerName: peerName, err: err}
	}
	return branchResult{peerName: peerName, report: text}
}

// drainFinalText consumes an event stream to completion and returns the
// final text, or an error if the stream ended in `error` without
// recovering a final answer.
func drainFinalText(events <-chan agentruntime.Event) (string, error) {
	var finalText string
	var errMsg string
	for ev := range events {
		switch ev.Kind {
		case agentruntime.EventError:
			errMsg = ev.ErrMessage
		case agentruntime.EventFinal:
			finalText = ev.FinalText
		}
	}
	if finalText == "" && errMsg != "" {
		return "", fmt.Errorf("%s", errMsg)
	}
	return finalText, nil
}

// synthesize builds the deterministic combined report: header, one section
// per peer in registration order (never completion order), then a fixed
// summary footer. No LLM call is made here — purely mechanical (spec.md
// §4.G).
func synthesize(query string, peerOrder []string, results []branchResult) string {
	var sb strings.Builder

	sb.WriteString("# 🔍 Parallel Root Cause Analysis Report\n\n")
	fmt.Fprintf(&sb, "**Query:** %s\n\n", query)
	fmt.Fprintf(&sb, "**Specialists consulted:** %s\n\n", strings.Join(peerOrder, ", "))

	for _, r := range results {
		fmt.Fprintf(&sb, "## %s\n\n", r.peerName)
		if r.err != nil {
			fmt.Fprintf(&sb, "❌ Error during investigation: %s\n\n", r.err.Error())
			continue
		}
		sb.WriteString(r.report)
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n")
	sb.WriteString("Cross-reference the findings above across platforms before concluding a single root cause; " +
		"an issue in one system often surfaces as symptoms in another.\n")

	return sb.String()
}
