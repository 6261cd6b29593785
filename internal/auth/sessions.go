package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks which issued session ids are still live
type SessionStore interface {
	Save(ctx context.Context, sessionID, username string, ttl time.Duration) error
	IsActive(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

const sessionKeyPrefix = "session:jti:"

// RedisSessionStore keeps sessions in redis so every instance of the
// service shares revocation state.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a redis-backed session store
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Save records a session with the token's remaining lifetime
func (s *RedisSessionStore) Save(ctx context.Context, sessionID, username string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, username, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// IsActive reports whether the session has not been revoked or expired
func (s *RedisSessionStore) IsActive(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}

// Revoke deletes the session
func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// MemorySessionStore is an in-process session store for tests and the
// memory storage driver.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
}

// NewMemorySessionStore creates an empty in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]time.Time)}
}

func (s *MemorySessionStore) Save(ctx context.Context, sessionID, username string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = time.Now().Add(ttl)
	return nil
}

func (s *MemorySessionStore) IsActive(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

func (s *MemorySessionStore) Revoke(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
