package session

import (
	"context"
	"testing"
	"time"

	"github.com/zhengjing-huang/lighthouse/pkg/errors"
)

func TestNew(t *testing.T) {
	sess, err := New("report-1", "https://example.com/", "all", time.Hour)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if sess.ID == "" {
		t.Error("session ID should not be empty")
	}
	if sess.ReportID != "report-1" || sess.URL != "https://example.com/" || sess.View != "all" {
		t.Errorf("session fields lost: %+v", sess)
	}
	if err := errors.ValidateToken(sess.Token); err != nil {
		t.Errorf("session token %q is not a valid UUID: %v", sess.Token, err)
	}
	if sess.IsExpired() {
		t.Error("fresh session should not be expired")
	}
	if !sess.ExpiresAt.After(sess.CreatedAt) {
		t.Error("ExpiresAt should be after CreatedAt")
	}
}

func TestGenerateIDUnique(t *testing.T) {
	a, err := GenerateID()
	if err != nil {
		t.Fatalf("GenerateID() failed: %v", err)
	}
	b, err := GenerateID()
	if err != nil {
		t.Fatalf("GenerateID() failed: %v", err)
	}
	if a == b {
		t.Error("GenerateID() should produce unique IDs")
	}
}

func TestCacheScope(t *testing.T) {
	sess := &Session{ID: "abc"}
	if got := sess.CacheScope(); got != "session:abc:" {
		t.Errorf("CacheScope() = %q, want session:abc:", got)
	}
	var nilSess *Session
	if got := nilSess.CacheScope(); got != "" {
		t.Errorf("nil CacheScope() = %q, want empty", got)
	}
}

func TestMemoryStoreSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	sess, _ := New("report-1", "https://example.com/", "all", time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got == nil || got.ReportID != "report-1" {
		t.Errorf("Get() = %+v, want stored session", got)
	}

	// Missing session is nil, nil
	got, err = store.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	// Expired session is nil, nil
	expired, _ := New("report-2", "https://example.com/", "all", -time.Minute)
	_ = store.Set(ctx, expired)
	got, err = store.Get(ctx, expired.ID)
	if err != nil || got != nil {
		t.Errorf("Get(expired) = %v, %v; want nil, nil", got, err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	got, _ = store.Get(ctx, sess.ID)
	if got != nil {
		t.Error("deleted session should be gone")
	}
}

func TestMemoryStoreTokens(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	token, err := store.Generate(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	ok, err := store.Validate(ctx, token)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !ok {
		t.Error("fresh token should validate")
	}

	// Single use: second validation fails
	ok, _ = store.Validate(ctx, token)
	if ok {
		t.Error("token should be single-use")
	}

	// Unknown token fails
	ok, _ = store.Validate(ctx, "bogus")
	if ok {
		t.Error("unknown token should not validate")
	}

	// Expired token fails
	expired, _ := store.Generate(ctx, -time.Minute)
	ok, _ = store.Validate(ctx, expired)
	if ok {
		t.Error("expired token should not validate")
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	live, _ := New("report-1", "https://example.com/", "all", time.Hour)
	dead, _ := New("report-2", "https://example.com/", "all", -time.Minute)
	_ = store.Set(ctx, live)
	_ = store.Set(ctx, dead)
	_, _ = store.Generate(ctx, -time.Minute)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	store.mu.RLock()
	sessions, tokens := len(store.sessions), len(store.tokens)
	store.mu.RUnlock()
	if sessions != 1 {
		t.Errorf("got %d sessions after cleanup, want 1", sessions)
	}
	if tokens != 0 {
		t.Errorf("got %d tokens after cleanup, want 0", tokens)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}
	defer store.Close()

	sess, _ := New("report-1", "https://example.com/", "unused-bytes", time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got == nil || got.View != "unused-bytes" {
		t.Errorf("Get() = %+v, want stored session", got)
	}

	got, err = store.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) failed: %v", err)
	}
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store, _ := NewFileStore(t.TempDir())
	defer store.Close()

	live, _ := New("report-1", "https://example.com/", "all", time.Hour)
	dead, _ := New("report-2", "https://example.com/", "all", -time.Minute)
	_ = store.Set(ctx, live)
	_ = store.Set(ctx, dead)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	got, _ := store.Get(ctx, live.ID)
	if got == nil {
		t.Error("live session should survive cleanup")
	}
	got, _ = store.Get(ctx, dead.ID)
	if got != nil {
		t.Error("expired session should be swept")
	}
}

func TestCurrentStore(t *testing.T) {
	ctx := context.Background()
	base, _ := NewFileStore(t.TempDir())
	store := &CurrentStore{store: base, sessionID: currentSessionID}

	sess, _ := New("report-1", "https://example.com/", "all", time.Hour)
	if err := store.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	got, err := store.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession() failed: %v", err)
	}
	if got == nil || got.ReportID != "report-1" {
		t.Errorf("GetSession() = %+v, want saved session", got)
	}
	if got.ID != currentSessionID {
		t.Errorf("persisted ID = %q, want %q", got.ID, currentSessionID)
	}

	if err := store.DeleteSession(ctx); err != nil {
		t.Fatalf("DeleteSession() failed: %v", err)
	}
	got, _ = store.GetSession(ctx)
	if got != nil {
		t.Error("deleted session should be gone")
	}
}
