// Package session provides viewer session management.
//
// A session ties a running viewer page to the report it displays. The serve
// command creates a session when a report is loaded, and the page uses the
// session's handshake token once to claim its report data over the API.
//
// This package defines interfaces for session storage and handshake token
// management, with implementations for different backends:
//   - memory: In-memory storage for single-instance serving and tests
//   - redis: Redis-backed storage for multi-instance deployments
//   - file: File-based storage for CLI persistence across restarts
//
// # Architecture
//
// Sessions store the loaded report reference (archive ID, audited URL,
// initial view) with automatic expiration. The Store interface supports:
//   - Get/Set/Delete operations
//   - Automatic expiration checking
//   - Cleanup of expired sessions
//
// Handshake tokens protect the report upload endpoint: a page may only post
// report data with a token the server minted for it. The TokenStore
// interface supports:
//   - Token generation with TTL
//   - Single-use validation (tokens are deleted after validation)
//
// # Usage
//
// Create a session store:
//
//	// Single instance
//	store := session.NewMemoryStore()
//
//	// Multi-instance
//	store, err := session.NewRedisStore(ctx, session.RedisConfig{
//	    Addr: "localhost:6379",
//	})
//
//	// CLI
//	store, err := session.NewFileStore("")  // Uses ~/.config/lighthouse-treemap/sessions/
//
// Manage sessions:
//
//	// Create session
//	sess, err := session.New(reportID, "https://example.com/", "all", session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	// Retrieve session
//	sess, err := store.Get(ctx, sessionID)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session ties a viewer page to a loaded report.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ReportID  string    `json:"report_id"`
	URL       string    `json:"url"`
	View      string    `json:"view"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// CacheScope returns a cache key prefix isolating this session's entries.
// Format: "session:{id}:". This format is used with ScopedKeyer so one
// viewer's artifacts never shadow another's.
func (s *Session) CacheScope() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("session:%s:", s.ID)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (optional, may be no-op for Redis).
	Cleanup(ctx context.Context) error
}

// TokenStore manages single-use handshake tokens.
// Tokens are short-lived (typically 10 minutes) and consumed on first use.
// For multi-instance deployments, use Redis to share tokens across instances.
type TokenStore interface {
	// Generate creates a new handshake token and stores it with the given TTL.
	// Returns the generated token.
	Generate(ctx context.Context, ttl time.Duration) (string, error)

	// Validate checks if a token is valid and removes it (single-use).
	// Returns true if the token was valid and not expired.
	Validate(ctx context.Context, token string) (bool, error)

	// Cleanup removes expired tokens (optional, may be no-op for Redis).
	Cleanup(ctx context.Context) error
}

// Default durations.
const (
	// DefaultTTL is the default session duration.
	DefaultTTL = 24 * time.Hour

	// DefaultTokenTTL is the default handshake token duration.
	DefaultTokenTTL = 10 * time.Minute
)

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// NewToken creates a handshake token. Tokens are UUIDs so they survive
// being passed through URLs and headers unescaped.
func NewToken() string {
	return uuid.NewString()
}

// New creates a new session for the given report.
func New(reportID, url, view string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		Token:     NewToken(),
		ReportID:  reportID,
		URL:       url,
		View:      view,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
