// Package registry implements the Tool Registry (spec.md §4.B): a
// read-only-after-construction aggregation of every tool exposed by every
// connected peer, tagged with its origin peer and addressable by a
// qualified name.
package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/peer"
)

// separator joins a peer name and its local tool name into a qualified
// name, mirroring the teacher's "mcp_<server>__<tool>" convention in
// internal/mcp/adapter.go (double underscore, here used as a plain
// separator rather than a literal prefix since there is no "mcp_" tag
// needed in this domain).
const separator = "__"

// ToolDescriptor is one registered tool, tagged with its origin peer.
type ToolDescriptor struct {
	QualifiedName string
	PeerName      string
	LocalName     string
	Description   string
	InputSchema   json.RawMessage
}

// Registry aggregates tools from all peers into one flat, qualified-name
// namespace. Built once after every peer connector has opened; read-only
// thereafter (spec.md §5: "Tool Registry is read-only after startup; no
// locking required").
type Registry struct {
	log *zap.Logger

	byQualified map[string]ToolDescriptor
	order       []string // qualified names in registration order
	byPeer      map[string][]string
}

// Build constructs a Registry from the given connected peers. Peers are
// processed in the order supplied by the caller (the Manager's
// registration order), so that tool-name collisions resolve deterministically:
// the last-registered tool for a given qualified name wins and a warning is
// logged (spec.md §3's stated collision rule, matching the teacher's
// tool.Registry.Register "WARNING: overwriting existing tool" behavior).
func Build(log *zap.Logger, peers []*peer.Peer) *Registry {
	r := &Registry{
		log:         log,
		byQualified: make(map[string]ToolDescriptor),
		byPeer:      make(map[string][]string),
	}

	for _, p := range peers {
		for _, t := range p.Tools {
			qn := QualifiedName(p.Descriptor.Name, t.Name)
			if _, exists := r.byQualified[qn]; exists {
				r.log.Warn("overwriting existing tool on collision",
					zap.String("qualified_name", qn), zap.String("peer", p.Descriptor.Name))
			} else {
				r.order = append(r.order, qn)
			}
			r.byQualified[qn] = ToolDescriptor{
				QualifiedName: qn,
				PeerName:      p.Descriptor.Name,
				LocalName:     t.Name,
				Description:   t.Description,
				InputSchema:   t.InputSchema,
			}
			r.byPeer[p.Descriptor.Name] = appendUnique(r.byPeer[p.Descriptor.Name], qn)
		}
	}
	return r
}

// QualifiedName builds the registry-wide name for a peer-local tool.
func QualifiedName(peerName, localName string) string {
	return peerName + separator + localName
}

// SplitQualifiedName reverses QualifiedName. Returns false if name does not
// contain the separator.
func SplitQualifiedName(name string) (peerName, localName string, ok bool) {
	idx := strings.Index(name, separator)
	if idx < 0 {
		return "", "", false
	}
	return name[:idx], name[idx+len(separator):], true
}

// All returns every registered tool, in registration order.
func (r *Registry) All() []ToolDescriptor {
	out := make([]ToolDescriptor, 0, len(r.order))
	for _, qn := range r.order {
		out = append(out, r.byQualified[qn])
	}
	return out
}

// ForPeer returns the tools registered for a single peer, in registration
// order. Returns an empty (non-nil) slice if the peer registered no tools
// (spec.md §8: "a peer that advertises zero tools still registers and
// simply contributes no entries").
func (r *Registry) ForPeer(peerName string) []ToolDescriptor {
	names := r.byPeer[peerName]
	out := make([]ToolDescriptor, 0, len(names))
	for _, qn := range names {
		out = append(out, r.byQualified[qn])
	}
	return out
}

// Resolve looks up a qualified name, returning the peer name and local tool
// name it maps to.
func (r *Registry) Resolve(qualifiedName string) (peerName, localName string, err error) {
	td, ok := r.byQualified[qualifiedName]
	if !ok {
		return "", "", fmt.Errorf("registry: unknown tool %q", qualifiedName)
	}
	return td.PeerName, td.LocalName, nil
}

// PeerNames returns the names of every peer that contributed at least one
// tool, sorted for deterministic iteration in prompts/logs.
func (r *Registry) PeerNames() []string {
	names := make([]string, 0, len(r.byPeer))
	for name := range r.byPeer {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
