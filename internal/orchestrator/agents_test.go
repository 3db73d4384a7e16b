package orchestrator

import (
	"testing"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/peer"
	"github.com/rca-orchestrator/orchestrator/internal/registry"
)

func TestBuildSpecialistAgents_OneAgentPerPeerScopedToItsTools(t *testing.T) {
	peers := []*peer.Peer{
		{Descriptor: peer.Descriptor{Name: "jenkins", Description: "CI"}, Tools: []peer.ToolInfo{{Name: "get_build_status"}}},
		{Descriptor: peer.Descriptor{Name: "kubernetes", Description: "cluster"}, Tools: []peer.ToolInfo{{Name: "get_pod_logs"}}},
	}
	reg := registry.Build(zap.NewNop(), peers)

	agents := BuildSpecialistAgents(peers, reg)
	if len(agents) != 2 {
		t.Fatalf("BuildSpecialistAgents() returned %d agents, want 2", len(agents))
	}

	jenkins, ok := agents["jenkins"]
	if !ok {
		t.Fatal("missing jenkins specialist agent")
	}
	if len(jenkins.Tools) != 1 || jenkins.Tools[0].Name != "jenkins__get_build_status" {
		t.Errorf("jenkins.Tools = %+v, want exactly its own qualified tool", jenkins.Tools)
	}
}

func TestBuildMainAgent_UnionOfAllTools(t *testing.T) {
	peers := []*peer.Peer{
		{Descriptor: peer.Descriptor{Name: "jenkins", Description: "CI"}, Tools: []peer.ToolInfo{{Name: "get_build_status"}}},
		{Descriptor: peer.Descriptor{Name: "kubernetes", Description: "cluster"}, Tools: []peer.ToolInfo{{Name: "get_pod_logs"}}},
	}
	reg := registry.Build(zap.NewNop(), peers)

	main := BuildMainAgent(peers, reg)
	if len(main.Tools) != 2 {
		t.Errorf("BuildMainAgent().Tools has %d entries, want 2 (union of all peers)", len(main.Tools))
	}
	if main.Name != MainAgentName {
		t.Errorf("BuildMainAgent().Name = %q, want %q", main.Name, MainAgentName)
	}
}
