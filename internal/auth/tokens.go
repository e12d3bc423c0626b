// Package auth resolves opaque session tokens to user identities. Token
// issuance lives in the identity service; this side only stores and looks up
// the mapping, with expiry handled by the store's TTL rather than any
// process-global cache.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Keiter0309/EcomGrove/internal/domain"
	"github.com/Keiter0309/EcomGrove/internal/redisx"
)

// TokenStore maps session tokens to user ids. Lookups of unknown or expired
// tokens fail with ENOTFOUND.
type TokenStore interface {
	Set(ctx context.Context, token string, userID int64) error
	Get(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

// RedisTokenStore keeps sessions in redis with a configurable TTL.
type RedisTokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTokenStore(rdb *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb, ttl: ttl}
}

func (s *RedisTokenStore) Set(ctx context.Context, token string, userID int64) error {
	return s.rdb.Set(ctx, fmt.Sprintf(redisx.KeySession, token), userID, s.ttl).Err()
}

func (s *RedisTokenStore) Get(ctx context.Context, token string) (int64, error) {
	id, err := s.rdb.Get(ctx, fmt.Sprintf(redisx.KeySession, token)).Int64()
	if err == redis.Nil {
		return 0, domain.Errorf(domain.ENOTFOUND, "session not found")
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(redisx.KeySession, token)).Err()
}

// MemoryTokenStore is the in-process equivalent, used by tests.
type MemoryTokenStore struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]memoryEntry
}

type memoryEntry struct {
	userID    int64
	expiresAt time.Time
}

func NewMemoryTokenStore(ttl time.Duration) *MemoryTokenStore {
	return &MemoryTokenStore{ttl: ttl, m: make(map[string]memoryEntry)}
}

func (s *MemoryTokenStore) Set(_ context.Context, token string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[token] = memoryEntry{userID: userID, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryTokenStore) Get(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[token]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.m, token)
		return 0, domain.Errorf(domain.ENOTFOUND, "session not found")
	}
	return e.userID, nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}
