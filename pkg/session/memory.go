package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory session and token store for single-instance
// serving and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	tokens   map[string]time.Time
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		tokens:   make(map[string]time.Time),
	}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if sess.IsExpired() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, nil
	}
	return sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Cleanup removes expired sessions and tokens.
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
	for token, expiresAt := range s.tokens {
		if now.After(expiresAt) {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.sessions = make(map[string]*Session)
	s.tokens = make(map[string]time.Time)
	s.mu.Unlock()
	return nil
}

// Generate creates a single-use handshake token with the given TTL.
func (s *MemoryStore) Generate(ctx context.Context, ttl time.Duration) (string, error) {
	token := NewToken()
	s.mu.Lock()
	s.tokens[token] = time.Now().Add(ttl)
	s.mu.Unlock()
	return token, nil
}

// Validate consumes a token, reporting whether it was valid and unexpired.
func (s *MemoryStore) Validate(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.tokens[token]
	if !ok {
		return false, nil
	}
	delete(s.tokens, token)
	return time.Now().Before(expiresAt), nil
}

var (
	_ Store      = (*MemoryStore)(nil)
	_ TokenStore = (*MemoryStore)(nil)
)
