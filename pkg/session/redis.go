package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis connection for RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore is a Redis-backed session and token store for multi-instance
// deployments. Expiration is delegated to Redis key TTLs, so Cleanup is a
// no-op.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func sessionKey(sessionID string) string { return "treemap:session:" + sessionID }
func tokenKey(token string) string       { return "treemap:token:" + token }

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		_ = s.client.Del(ctx, sessionKey(sessionID)).Err()
		return nil, nil
	}
	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires keys via TTL.
func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

// Close closes the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }

// Generate creates a single-use handshake token with the given TTL.
func (s *RedisStore) Generate(ctx context.Context, ttl time.Duration) (string, error) {
	token := NewToken()
	if err := s.client.Set(ctx, tokenKey(token), "1", ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Validate consumes a token, reporting whether it was valid and unexpired.
// The delete count distinguishes a live token from a missing or expired one.
func (s *RedisStore) Validate(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Del(ctx, tokenKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("validate token: %w", err)
	}
	return n > 0, nil
}

var (
	_ Store      = (*RedisStore)(nil)
	_ TokenStore = (*RedisStore)(nil)
)
