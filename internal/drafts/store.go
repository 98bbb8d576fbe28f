package drafts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sponsorconnect/backend/internal/apperrors"
)

// Store keeps one serialized draft per brand.
type Store interface {
	Load(ctx context.Context, owner uuid.UUID) ([]byte, error)
	Save(ctx context.Context, owner uuid.UUID, data []byte) error
	Clear(ctx context.Context, owner uuid.UUID) error
}

func draftKey(owner uuid.UUID) string {
	return fmt.Sprintf("draft:campaign:%s", owner)
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, owner uuid.UUID) ([]byte, error) {
	data, err := s.client.Get(ctx, draftKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrNotFound
	}
	return data, err
}

func (s *RedisStore) Save(ctx context.Context, owner uuid.UUID, data []byte) error {
	return s.client.Set(ctx, draftKey(owner), data, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, owner uuid.UUID) error {
	return s.client.Del(ctx, draftKey(owner)).Err()
}

type MemoryStore struct {
	mu     sync.Mutex
	drafts map[uuid.UUID][]byte
	saves  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[uuid.UUID][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, owner uuid.UUID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.drafts[owner]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Save(_ context.Context, owner uuid.UUID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[owner] = append([]byte(nil), data...)
	s.saves++
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, owner uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, owner)
	return nil
}

// Saves counts successful writes.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
