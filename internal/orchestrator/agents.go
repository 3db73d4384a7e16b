package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
	"github.com/rca-orchestrator/orchestrator/internal/peer"
	"github.com/rca-orchestrator/orchestrator/internal/registry"
)

// MainAgentName identifies the Main Orchestrator Agent (spec.md §4.E).
const MainAgentName = "main-orchestrator"

// toolDefinitions converts registry descriptors into the agent runtime's
// function-calling schema shape.
func toolDefinitions(tds []registry.ToolDescriptor) []agentruntime.ToolDefinition {
	defs := make([]agentruntime.ToolDefinition, 0, len(tds))
	for _, td := range tds {
		var params any
		if len(td.InputSchema) > 0 {
			if err := json.Unmarshal(td.InputSchema, &params); err != nil {
				params = map[string]any{"type": "object"}
			}
		} else {
			params = map[string]any{"type": "object"}
		}
		defs = append(defs, agentruntime.ToolDefinition{
			Name:        td.QualifiedName,
			Description: td.Description,
			Parameters:  params,
		})
	}
	return defs
}

// specialistInstruction templates an RCA-oriented instruction from the
// peer's name and description, commanding the fixed report structure
// spec.md §4.D requires.
func specialistInstruction(desc peer.Descriptor) string {
	return fmt.Sprintf(`You are the %s specialist agent, responsible for root-cause analysis
against %s (%s).

When investigating a user's report:
1. Gather evidence using only your own tools.
2. Analyze the evidence you collected.
3. Identify a root cause, if one is evident.
4. Respond using exactly this structure, with these section headers:

Status: one of "no issues", "issues", or "critical"
Evidence Collected: what you gathered and how
Findings: what the evidence shows
Root Cause: the identified root cause, or "none identified"
Recommendations: concrete next steps
`, desc.Name, desc.Name, desc.Description)
}

// BuildSpecialistAgents creates one Agent per connected peer (spec.md
// §4.D), each scoped to exactly that peer's tools, keyed by peer name.
func BuildSpecialistAgents(peers []*peer.Peer, reg *registry.Registry) map[string]agentruntime.Agent {
	agents := make(map[string]agentruntime.Agent, len(peers))
	for _, p := range peers {
		name := p.Descriptor.Name
		agents[name] = agentruntime.Agent{
			Name:        name,
			Instruction: specialistInstruction(p.Descriptor),
			Tools:       toolDefinitions(reg.ForPeer(name)),
			Description: p.Descriptor.Description,
		}
	}
	return agents
}

// BuildMainAgent creates the Main Orchestrator Agent: the union of all
// registered tools plus routing guidance naming every configured peer
// (spec.md §4.E).
func BuildMainAgent(peers []*peer.Peer, reg *registry.Registry) agentruntime.Agent {
	var sb strings.Builder
	sb.WriteString("You are the main orchestrator agent, mediating between the user and the following platforms:\n")
	for _, p := range peers {
		fmt.Fprintf(&sb, "- %s: %s\n", p.Descriptor.Name, p.Descriptor.Description)
	}
	sb.WriteString("\nWhen the user's question names a specific platform, restrict yourself to that " +
		"platform's tools. Otherwise use whichever tools are relevant to answer the user's question " +
		"directly and conversationally.\n")

	return agentruntime.Agent{
		Name:        MainAgentName,
		Instruction: sb.String(),
		Tools:       toolDefinitions(reg.All()),
		Description: "main orchestrator agent with the union of all peers' tools",
	}
}
