// Package session implements the Session Store (spec.md §4.H): a
// file-backed, append-only conversation log keyed by session id, one JSON
// file per session, safe for concurrent in-process access.
package session

import "time"

// Role constants for Message.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one immutable turn in a session's history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the full, on-disk representation of one conversation
// (spec.md §3, §6's session file format).
type Session struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	AppName   string         `json:"app_name"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Messages  []Message      `json:"messages"`
	Metadata  map[string]any `json:"metadata"`
}

// Summary is the list-view projection returned by Store.List.
type Summary struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

func summarize(s *Session) Summary {
	return Summary{
		SessionID:    s.SessionID,
		UserID:       s.UserID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: len(s.Messages),
	}
}

const appName = "mcp-rca-orchestrator"

const titleMaxRunes = 50

// deriveTitle implements spec.md §3/§8's exact title rule: first 50
// characters of the content, with a single "…" appended iff the content is
// longer than that — distinct from util.TruncateRunes (which appends "..."
// when it truncates and is used elsewhere for event arg-repr truncation).
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxRunes {
		return content
	}
	return string(runes[:titleMaxRunes]) + "…"
}
