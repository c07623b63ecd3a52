package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 24 * time.Hour
)

// ErrNoSession means the session id has no live entry in the store.
var ErrNoSession = errors.New("no such session")

// SessionStore binds opaque session ids to authenticated user ids.
// An in-memory fake backs it in tests, Redis in production.
type SessionStore interface {
	// Create mints a fresh session id for the user. It never reuses an
	// existing id, so a pre-login session can never become authenticated.
	Create(ctx context.Context, userID int64) (string, error)
	// GetUserID resolves a session id to its owner. ErrNoSession if expired or unknown.
	GetUserID(ctx context.Context, id string) (int64, error)
	// Renew pushes the session's expiry out by the configured TTL.
	Renew(ctx context.Context, id string) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in Redis with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a new RedisStore.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = sessionTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, userID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	key := sessionKeyPrefix + id
	if err := s.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) GetUserID(ctx context.Context, id string) (int64, error) {
	v, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Result()
	if err == redis.Nil {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}
	return userID, nil
}

func (s *RedisStore) Renew(ctx context.Context, id string) error {
	return s.rdb.Expire(ctx, sessionKeyPrefix+id, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

// newSessionID returns 32 hex chars (128 bits of entropy), used as the cookie value.
func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
