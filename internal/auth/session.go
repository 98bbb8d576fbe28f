package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sponsorconnect/backend/internal/apperrors"
)

// Session is the server-side half of a login. The token's jti points at it;
// deleting it revokes the token before expiry.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserType  string    `json:"user_type"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, userID uuid.UUID, id string) (*Session, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
}

// NewSessionID returns a lexically sortable session id.
func NewSessionID() string {
	return ulid.Make().String()
}

func sessionKey(userID uuid.UUID, id string) string {
	return fmt.Sprintf("session:%s:%s", userID, id)
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (r *RedisSessionStore) Create(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.UserID, s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, userID uuid.UUID, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(userID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	return r.client.Del(ctx, sessionKey(userID, id)).Err()
}

type MemorySessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{now: time.Now, sessions: make(map[string]Session)}
}

func (m *MemorySessionStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.ExpiresAt.After(m.now()) {
		return fmt.Errorf("session already expired")
	}
	m.sessions[sessionKey(s.UserID, s.ID)] = *s
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, userID uuid.UUID, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey(userID, id)
	s, ok := m.sessions[key]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if !s.ExpiresAt.After(m.now()) {
		delete(m.sessions, key)
		return nil, apperrors.ErrSessionNotFound
	}
	return &s, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, userID uuid.UUID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionKey(userID, id))
	return nil
}
