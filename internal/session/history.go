package session

import (
	"github.com/rca-orchestrator/orchestrator/internal/agentruntime"
)

// ToRuntimeMessages converts a session's persisted message history into the
// agent runtime's message shape, trimming the oldest messages until the
// total character count is within budget (0 = no limit). Walks
// newest-to-oldest exactly as the teacher's ToMessages does, so at least
// the most recent message is always included even if it alone exceeds the
// budget — generalized here from the teacher's Turn (user+assistant pair)
// granularity to per-Message granularity, since this domain's history is
// already role-tagged rather than paired.
func ToRuntimeMessages(messages []Message, budget int) []agentruntime.Message {
	if len(messages) == 0 {
		return nil
	}

	start := 0
	if budget > 0 {
		total := 0
		for i := len(messages) - 1; i >= 0; i-- {
			cost := len([]rune(messages[i].Content))
			if total+cost > budget {
				start = i + 1
				break
			}
			total += cost
		}
		if start >= len(messages) {
			start = len(messages) - 1
		}
	}

	out := make([]agentruntime.Message, 0, len(messages)-start)
	for _, m := range messages[start:] {
		role := agentruntime.RoleUser
		if m.Role == RoleAssistant {
			role = agentruntime.RoleAssistant
		}
		out = append(out, agentruntime.Message{Role: role, Content: m.Content})
	}
	return out
}
