package session

import (
	"testing"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(zap.NewNop(), t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestAddMessage_CreatesSessionLazily(t *testing.T) {
	s := newTestStore(t)

	sess, err := s.AddMessage("s1", "u1", RoleUser, "hello")
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if sess.UserID != "u1" {
		t.Errorf("expected user id u1, got %q", sess.UserID)
	}
	if len(sess.Messages) != 1 || sess.Messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", sess.Messages)
	}
	if sess.CreatedAt.After(sess.Messages[0].Timestamp) {
		t.Errorf("created_at must be <= message timestamp")
	}
}

func TestAddMessage_TitleDerivedFromFirstUserMessage(t *testing.T) {
	s := newTestStore(t)

	short := "first question"
	sess, err := s.AddMessage("s1", "u1", RoleUser, short)
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if sess.Title != short {
		t.Errorf("expected title %q, got %q", short, sess.Title)
	}

	long := "this is a very long opening message that definitely exceeds fifty characters in length"
	sess2, err := s.AddMessage("s2", "u1", RoleUser, long)
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	want := string([]rune(long)[:50]) + "…"
	if sess2.Title != want {
		t.Errorf("expected title %q, got %q", want, sess2.Title)
	}

	// A subsequent assistant message must not overwrite an already-set title.
	sess3, err := s.AddMessage("s1", "u1", RoleAssistant, "an answer")
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if sess3.Title != short {
		t.Errorf("title must not change on assistant append, got %q", sess3.Title)
	}
}

func TestAddMessage_PersistsAcrossNewStore(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop()

	s1, err := NewStore(log, dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s1.AddMessage("s1", "u1", RoleUser, "first question"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if _, err := s1.AddMessage("s1", "u1", RoleAssistant, "an answer"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	s2, err := NewStore(log, dir)
	if err != nil {
		t.Fatalf("NewStore (restart): %v", err)
	}
	sess, err := s2.Get("s1")
	if err != nil {
		t.Fatalf("Get after restart: %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected 2 messages after restart, got %d", len(sess.Messages))
	}
	if sess.Messages[0].Content != "first question" || sess.Messages[1].Content != "an answer" {
		t.Errorf("messages out of order or corrupted: %+v", sess.Messages)
	}
}

func TestGet_UnknownSession(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("does-not-exist"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestGet_RejectsPathSeparators(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"../etc/passwd", "a/b", "a\\b"} {
		if _, err := s.Get(id); err == nil {
			t.Errorf("expected rejection for id %q", id)
		}
	}
}

func TestList_SortedByUpdatedAtDescending(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.AddMessage("first", "u1", RoleUser, "a"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if _, err := s.AddMessage("second", "u1", RoleUser, "b"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	// Touch "first" again so it becomes the most recently updated.
	if _, err := s.AddMessage("first", "u1", RoleAssistant, "c"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	list, err := s.List("u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	if list[0].SessionID != "first" {
		t.Errorf("expected most recently updated session first, got %q", list[0].SessionID)
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].UpdatedAt.Before(list[i].UpdatedAt) {
			t.Errorf("list not sorted by updated_at descending")
		}
	}
}

func TestDelete_IdempotentNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddMessage("s1", "u1", RoleUser, "hi"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	if err := s.Delete("s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("s1"); err == nil {
		t.Fatal("expected SessionNotFound after delete")
	}
	if err := s.Delete("s1"); err == nil {
		t.Fatal("expected SessionNotFound on second delete")
	}
}
