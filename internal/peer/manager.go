package peer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/orcherr"
)

// Peer bundles a connected Client with its static descriptor and cached
// tool list, as held by the Manager.
type Peer struct {
	Descriptor Descriptor
	Client     *Client
	Tools      []ToolInfo
}

// Manager owns every configured MCP peer connection for the process
// lifetime (spec.md §4.A/§3: the Orchestrator "owns" the Peer Connector
// set). Best-effort semantics throughout: one peer's connect/list failure
// never prevents the others from coming up, mirroring the teacher's
// mcp.Manager.ConnectAll.
type Manager struct {
	log *zap.Logger

	mu    sync.RWMutex
	order []string
	peers map[string]*Peer
}

// NewManager creates an empty Manager. Call ConnectAll to bring peers up.
func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		log:   log,
		peers: make(map[string]*Peer),
	}
}

// ConnectAll connects to every enabled descriptor concurrently. Descriptors
// with Enabled=false are skipped entirely. Connection and tool-discovery
// failures are logged and recorded as PeerUnavailable but never returned as
// a fatal error — the orchestrator must still start serving the peers that
// did come up (spec.md §4.A, §9 non-goals list no single-peer SPOF).
func (m *Manager) ConnectAll(ctx context.Context, descs []Descriptor) {
	var wg sync.WaitGroup
	// Indexed by descs position so registration order survives regardless of
	// which connect finishes first (spec.md §4.F/§4.G/§8: report sections and
	// router tie-breaks must follow configuration order, not connect latency).
	slots := make([]*Peer, len(descs))

	for i, desc := range descs {
		if !desc.Enabled {
			m.log.Info("peer disabled, skipping", zap.String("peer", desc.Name))
			continue
		}
		i, desc := i, desc
		wg.Add(1)
		go func() {
			defer wg.Done()
			peer, err := m.connectOne(ctx, desc)
			if err != nil {
				m.log.Warn("peer unavailable",
					zap.String("peer", desc.Name), zap.Error(err))
				return
			}
			slots[i] = peer
		}()
	}
	wg.Wait()
	m.mergeSlots(slots)
}

// mergeSlots records the connected peers from ConnectAll's position-indexed
// slots into m.peers/m.order, in slot order. Kept separate from the
// goroutine fan-out above so the order-preservation behavior is testable
// without a live connection.
func (m *Manager) mergeSlots(slots []*Peer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range slots {
		if p == nil {
			continue
		}
		name := p.Descriptor.Name
		if _, exists := m.peers[name]; !exists {
			m.order = append(m.order, name)
		}
		m.peers[name] = p
	}
}

// connectOne connects a single peer and lists its tools. It performs no
// locking of its own — callers serialize Manager state updates themselves.
// A handshake failure is reported as *orcherr.PeerUnavailable (spec.md §7),
// since the peer is excluded from the registry rather than aborting startup.
func (m *Manager) connectOne(ctx context.Context, desc Descriptor) (*Peer, error) {
	client := NewClient(desc)
	if err := client.Connect(ctx); err != nil {
		return nil, &orcherr.PeerUnavailable{Peer: desc.Name, Err: err}
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		m.log.Warn("peer connected but tool discovery failed",
			zap.String("peer", desc.Name), zap.Error(err))
		tools = nil
	}

	m.log.Info("peer connected",
		zap.String("peer", desc.Name),
		zap.String("transport", string(desc.Transport)),
		zap.Int("tools", len(tools)))

	return &Peer{Descriptor: desc, Client: client, Tools: tools}, nil
}

// List returns every connected peer in registration order.
func (m *Manager) List() []*Peer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Peer, 0, len(m.order))
	for _, name := range m.order {
		if p, ok := m.peers[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the named peer, or false if it is not connected.
func (m *Manager) Get(name string) (*Peer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.peers[name]
	return p, ok
}

// Names returns the sorted names of all currently connected peers, used
// for status/debug endpoints where determinism matters more than
// registration order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.peers))
	for name := range m.peers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloseAll closes every connected peer's transport. Errors are logged, not
// returned, since this is called during shutdown where partial failure is
// not actionable.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, p := range m.peers {
		if err := p.Client.Close(); err != nil {
			m.log.Warn("error closing peer", zap.String("peer", name), zap.Error(err))
		}
	}
	m.peers = make(map[string]*Peer)
	m.order = nil
}

// errUnknownPeer builds the error for a tool name whose peer prefix doesn't
// match any connected peer. Nothing in this repository calls it;
// orchestrator.invokeTool reports an unconnected peer as
// *orcherr.PeerUnavailable instead.
func errUnknownPeer(name string) error {
	return fmt.Errorf("peer: unknown peer %q", name)
}
