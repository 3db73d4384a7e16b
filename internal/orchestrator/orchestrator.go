// Package orchestrator implements the Specialist & Main Agents (spec.md
// §4.D/E), the Query Router (§4.F) and the Parallel RCA Coordinator (§4.G),
// composed into one Orchestrator that owns the Tool Registry, the Peer
// Connectors, the Agents and a handle to the Session Store (spec.md §3).
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
	"github.com/rca-orchestrator/orchestrator/internal/metrics"
	"github.com/rca-orchestrator/orchestrator/internal/orcherr"
	"github.com/rca-orchestrator/orchestrator/internal/peer"
	"github.com/rca-orchestrator/orchestrator/internal/registry"
	"github.com/rca-orchestrator/orchestrator/internal/session"
)

// historyBudget bounds how many runes of prior session history are fed
// back into the agent runtime as the session view on each turn.
const historyBudget = 8000

// Orchestrator mediates every chat turn: route, execute (Main Agent or
// Parallel RCA), persist, stream events.
type Orchestrator struct {
	log *zap.Logger

	Model string

	peers       *peer.Manager
	registry    *registry.Registry
	router      *Router
	runtime     *agentruntime.Runtime
	rca         *RCACoordinator
	store          *session.Store
	toolTimeout    time.Duration
	overallTimeout time.Duration

	mainAgent   agentruntime.Agent
	specialists map[string]agentruntime.Agent
}

// New wires an Orchestrator from its already-connected dependencies: the
// peer Manager must have completed ConnectAll, and reg must have been
// built from peers.List() beforehand. overallTimeout bounds an entire turn
// end-to-end; zero means unset (spec.md §5: "default unset").
func New(log *zap.Logger, model string, peers *peer.Manager, reg *registry.Registry, llmClient agentruntime.LLMClient, store *session.Store, toolTimeout, overallTimeout time.Duration) *Orchestrator {
	connected := peers.List()

	specialists := BuildSpecialistAgents(connected, reg)
	for name, a := range specialists {
		a.Model = model
		specialists[name] = a
	}
	mainAgent := BuildMainAgent(connected, reg)
	mainAgent.Model = model

	keywordSources := make([]PeerKeywordSource, 0, len(connected))
	for _, p := range connected {
		keywordSources = append(keywordSources, PeerKeywordSource{Name: p.Descriptor.Name, Keywords: p.Descriptor.Keywords})
	}
	router := NewRouter(keywordSources, len(specialists))

	o := &Orchestrator{
		log:            log,
		Model:          model,
		peers:          peers,
		registry:       reg,
		router:         router,
		store:          store,
		toolTimeout:    toolTimeout,
		overallTimeout: overallTimeout,
		mainAgent:      mainAgent,
		specialists:    specialists,
	}
	o.runtime = agentruntime.New(log, llmClient, o.invokeTool)
	o.rca = NewRCACoordinator(log, connected, specialists, o.runtime)

	metrics.SetConnectedPeers(len(connected))
	return o
}

// PeerDescriptors returns the descriptors of every currently connected
// peer, for the /servers endpoint.
func (o *Orchestrator) PeerDescriptors() []peer.Descriptor {
	list := o.peers.List()
	out := make([]peer.Descriptor, 0, len(list))
	for _, p := range list {
		out = append(out, p.Descriptor)
	}
	return out
}

// invokeTool resolves a qualified tool name to its connected peer and
// calls it, bounded by the configured per-peer tool-call timeout (spec.md
// §5: "default 30 seconds").
func (o *Orchestrator) invokeTool(ctx context.Context, qualifiedName string, args map[string]any) (string, error) {
	peerName, localName, err := o.registry.Resolve(qualifiedName)
	if err != nil {
		return "", err
	}
	p, ok := o.peers.Get(peerName)
	if !ok {
		return "", &orcherr.PeerUnavailable{Peer: peerName, Err: fmt.Errorf("not connected")}
	}

	if o.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.toolTimeout)
		defer cancel()
	}
	result, err := p.Client.CallTool(ctx, localName, args)
	metrics.RecordToolInvocation(peerName, err == nil)
	return result, err
}

// ConnectedPeerNames returns the names of every currently connected peer,
// for the /health endpoint.
func (o *Orchestrator) ConnectedPeerNames() []string {
	return o.peers.Names()
}

// HandleTurn routes and executes one user turn end-to-end: persists the
// user message, runs either the Main Agent or the Parallel RCA Coordinator
// per the router's decision, persists the assistant's final text, and
// streams every Event produced along the way (spec.md §4.C/F/G/H
// combined). The returned channel is closed once the turn completes.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, userID, userText string) <-chan agentruntime.Event {
	var cancel context.CancelFunc
	if o.overallTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.overallTimeout)
	}
	out := make(chan agentruntime.Event, 8)
	go o.handleTurn(ctx, cancel, sessionID, userID, userText, out)
	return out
}

func (o *Orchestrator) handleTurn(ctx context.Context, cancel context.CancelFunc, sessionID, userID, userText string, out chan<- agentruntime.Event) {
	defer close(out)
	if cancel != nil {
		defer cancel()
	}

	// Captured before persisting the current turn's user message, so the
	// Main Agent doesn't see it twice (once here, once as the explicit
	// userText the runtime appends itself).
	priorView := o.sessionView(sessionID)

	if _, err := o.store.AddMessage(sessionID, userID, session.RoleUser, userText); err != nil {
		out <- agentruntime.Event{Kind: agentruntime.EventError, ErrMessage: err.Error()}
		out <- agentruntime.Event{Kind: agentruntime.EventFinal}
		return
	}

	decision := o.router.Route(userText)

	var finalText string
	switch decision.Destination {
	case DestinationRCACoordinator:
		names := make([]string, 0, len(o.specialists))
		for _, p := range o.peers.List() {
			names = append(names, p.Descriptor.Name)
		}
		out <- agentruntime.Event{
			Kind:       agentruntime.EventStatus,
			StatusText: fmt.Sprintf("Running parallel root-cause analysis across %s…", strings.Join(names, ", ")),
		}

		report := o.rca.Investigate(ctx, sessionID, userText, o.sessionView)
		finalText = report
		out <- agentruntime.Event{Kind: agentruntime.EventText, TextChunk: report}
		out <- agentruntime.Event{Kind: agentruntime.EventFinal, FinalText: report}

	default:
		if decision.MatchedPeer != "" {
			out <- agentruntime.Event{
				Kind:       agentruntime.EventStatus,
				StatusText: fmt.Sprintf("Routing to %s tools…", decision.MatchedPeer),
			}
		}
		for ev := range o.runtime.Run(ctx, o.mainAgent, priorView, userText) {
			out <- ev
			if ev.Kind == agentruntime.EventFinal {
				finalText = ev.FinalText
			}
		}
	}

	if finalText == "" {
		return
	}
	if _, err := o.store.AddMessage(sessionID, userID, session.RoleAssistant, finalText); err != nil {
		o.log.Warn("failed to persist assistant message", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (o *Orchestrator) sessionView(sessionID string) []agentruntime.Message {
	sess, err := o.store.Get(sessionID)
	if err != nil {
		return nil
	}
	return session.ToRuntimeMessages(sess.Messages, historyBudget)
}
