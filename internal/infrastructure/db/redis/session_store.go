package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/pennywise/expense-tracker/internal/core/domain"
	"github.com/pennywise/expense-tracker/internal/infrastructure/security"
)

// SessionStore keeps sessions in Redis.
// Key format: session:<sha256(token)>, expiring with the session itself.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

type sessionRecord struct {
	UserID    int64 `json:"userId"`
	CreatedAt int64 `json:"createdAt"`
	ExpiresAt int64 `json:"expiresAt"`
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func (s *SessionStore) CreateSession(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	payload, err := json.Marshal(sessionRecord{
		UserID:    userID,
		CreatedAt: s.now().UnixMilli(),
		ExpiresAt: expiresAt.UnixMilli(),
	})
	if err != nil {
		return oops.Code("REDIS_CREATE_SESSION_FAILED").Wrap(err)
	}

	key := s.key(token)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, payload, 0)
	pipe.ExpireAt(ctx, key, expiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return oops.Code("REDIS_CREATE_SESSION_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	return nil
}

// FindValidSession checks expiry itself as well, since Redis expiry is lazy
// and has second granularity on some versions.
func (s *SessionStore) FindValidSession(ctx context.Context, token string, now time.Time) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}

	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, oops.Code("REDIS_FIND_SESSION_FAILED").Wrap(err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, oops.Code("REDIS_FIND_SESSION_FAILED").
			With("reason", "corrupt session record").
			Wrap(err)
	}

	sess := &domain.Session{
		UserID:    rec.UserID,
		CreatedAt: time.UnixMilli(rec.CreatedAt).UTC(),
		ExpiresAt: time.UnixMilli(rec.ExpiresAt).UTC(),
	}
	if !sess.ValidAt(now) {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return oops.Code("REDIS_DELETE_SESSION_FAILED").Wrap(err)
	}
	return nil
}

// DeleteExpiredSessions is a no-op: Redis evicts expired keys on its own.
func (s *SessionStore) DeleteExpiredSessions(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// Ping checks the Redis connection.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) key(token string) string {
	return "session:" + security.DigestToken(token)
}
