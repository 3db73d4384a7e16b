package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/orcherr"
)

// Store is a file-backed, append-only session log: one JSON file per
// session under dir, with an in-memory cache guarded by a mutex. Not
// transactional across processes — it assumes a single writer (spec.md
// §4.H). Every successfully-acknowledged write is durable via
// write-temp-then-rename, generalizing the teacher's
// internal/mcp.Manager.updateServerMeta read/merge/marshal-indent/write
// helper from a one-off config patch into the store's primary persistence
// mechanism.
type Store struct {
	log *zap.Logger
	dir string

	mu    sync.Mutex
	cache map[string]*Session
}

// NewStore creates (if necessary) the sessions directory and returns a
// Store rooted there.
func NewStore(log *zap.Logger, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("session: create sessions dir %q: %w", dir, err)
	}
	return &Store{
		log:   log,
		dir:   dir,
		cache: make(map[string]*Session),
	}, nil
}

// NewID generates a fresh opaque session id, used by the HTTP layer when
// the caller omits one (spec.md §4.J: "session_<8 hex>").
func NewID() string {
	return "session_" + shortHex()
}

// NewUserID generates a fresh opaque user id ("user_<8 hex>").
func NewUserID() string {
	return "user_" + shortHex()
}

func shortHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// validateSessionID rejects ids that could escape the sessions directory.
// Per spec.md §8, a path-separator-bearing id is rejected as
// SessionNotFound, not resolved to a file outside the directory.
func validateSessionID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return &orcherr.SessionNotFound{SessionID: id}
	}
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// AddMessage appends one message to a session, creating it lazily if it
// doesn't yet exist, updating the title and updated_at, and persisting
// atomically (spec.md §4.H's five-step contract).
func (s *Store) AddMessage(sessionID, userID, role, content string) (*Session, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadLocked(sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if sess == nil {
		sess = &Session{
			SessionID: sessionID,
			UserID:    userID,
			AppName:   appName,
			CreatedAt: now,
			UpdatedAt: now,
			Messages:  nil,
			Metadata:  map[string]any{},
		}
	}

	sess.Messages = append(sess.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	if sess.Title == "" && role == RoleUser {
		sess.Title = deriveTitle(content)
	}
	sess.UpdatedAt = now

	if err := s.writeLocked(sess); err != nil {
		return nil, err
	}
	s.cache[sessionID] = sess
	return sess, nil
}

// Get returns the full session, or a SessionNotFound error.
func (s *Store) Get(sessionID string) (*Session, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, &orcherr.SessionNotFound{SessionID: sessionID}
	}
	return sess, nil
}

// List returns session summaries, optionally filtered by user id, sorted
// by updated_at descending (spec.md §4.H/§8).
func (s *Store) List(userID string) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("session: read sessions dir: %w", err)
	}

	var summaries []Summary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")

		sess := s.cache[id]
		if sess == nil {
			loaded, err := s.readFile(id)
			if err != nil {
				s.log.Warn("skipping unparseable session file",
					zap.String("file", e.Name()), zap.Error(err))
				continue
			}
			sess = loaded
		}
		if userID != "" && sess.UserID != userID {
			continue
		}
		summaries = append(summaries, summarize(sess))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Delete removes a session's file and cache entry. Returns SessionNotFound
// if it doesn't exist — idempotent in the sense that a repeated delete
// keeps returning the same error rather than a different failure mode
// (spec.md §8).
func (s *Store) Delete(sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(sessionID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &orcherr.SessionNotFound{SessionID: sessionID}
		}
		return fmt.Errorf("session: stat %q: %w", path, err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("session: remove %q: %w", path, err)
	}
	delete(s.cache, sessionID)
	return nil
}

// loadLocked returns the cached or on-disk session, or (nil, nil) if
// neither exists. Callers must hold s.mu.
func (s *Store) loadLocked(sessionID string) (*Session, error) {
	if sess, ok := s.cache[sessionID]; ok {
		return sess, nil
	}

	path := s.path(sessionID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: stat %q: %w", path, err)
	}

	sess, err := s.readFile(sessionID)
	if err != nil {
		return nil, err
	}
	s.cache[sessionID] = sess
	return sess, nil
}

func (s *Store) readFile(sessionID string) (*Session, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		return nil, fmt.Errorf("session: read %q: %w", sessionID, err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: parse %q: %w", sessionID, err)
	}
	return &sess, nil
}

// writeLocked marshals sess with two-space indent and writes it atomically
// via write-to-temp + rename, so a crash mid-write never corrupts the
// previously-committed file (spec.md §5/§9). Callers must hold s.mu.
func (s *Store) writeLocked(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal %q: %w", sess.SessionID, err)
	}

	final := s.path(sess.SessionID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("session: write temp file for %q: %w", sess.SessionID, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("session: rename temp file for %q: %w", sess.SessionID, err)
	}
	return nil
}
