package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "rbo:session:"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// SessionData is what the dashboard keeps per logged-in user
type SessionData struct {
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists serialized sessions with a TTL
type SessionStore interface {
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Load(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps sessions in Redis so several instances can share them
type RedisSessionStore struct {
	redis *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return s.redis.Set(ctx, sessionKeyPrefix+id, data, ttl).Err()
}

func (s *RedisSessionStore) Load(ctx context.Context, id string) ([]byte, error) {
	val, err := s.redis.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	return val, err
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, sessionKeyPrefix+id).Err()
}

// MemorySessionStore keeps sessions in process memory (single instance only)
type MemorySessionStore struct {
	cache *cache.Cache
}

func NewMemorySessionStore(cleanupInterval time.Duration) *MemorySessionStore {
	return &MemorySessionStore{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (s *MemorySessionStore) Save(_ context.Context, id string, data []byte, ttl time.Duration) error {
	s.cache.Set(sessionKeyPrefix+id, data, ttl)
	return nil
}

func (s *MemorySessionStore) Load(_ context.Context, id string) ([]byte, error) {
	val, ok := s.cache.Get(sessionKeyPrefix + id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return val.([]byte), nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(sessionKeyPrefix + id)
	return nil
}

// SessionService manages dashboard sessions on top of a SessionStore
type SessionService struct {
	store  SessionStore
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(store SessionStore, ttl time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{store: store, ttl: ttl, now: time.Now, logger: logger}
}

// TTL is the lifetime of a new or refreshed session
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// CreateSession starts a session for username and returns its id
func (s *SessionService) CreateSession(ctx context.Context, username string) (*SessionData, error) {
	now := s.now()
	session := &SessionData{
		SessionID: uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Debug("session created", zap.String("username", username))
	return session, nil
}

// GetSession loads a live session
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	raw, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if s.now().After(session.ExpiresAt) {
		_ = s.DeleteSession(ctx, sessionID)
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// DeleteSession ends a session; deleting an unknown id is not an error
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RefreshSession extends the session expiration
func (s *SessionService) RefreshSession(ctx context.Context, sessionID string) (*SessionData, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.ExpiresAt = s.now().Add(s.ttl)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) save(ctx context.Context, session *SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := session.ExpiresAt.Sub(s.now())
	if err := s.store.Save(ctx, session.SessionID, data, ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
