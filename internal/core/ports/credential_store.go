package ports

import (
	"context"
	"time"

	"github.com/pennywise/expense-tracker/internal/core/domain"
)

// UserRepository persists accounts. Email and username uniqueness is enforced
// by the backing engine, not only by a lookup before insert.
type UserRepository interface {
	// CreateUser inserts a user and returns its new id. It fails with
	// domain.ErrDuplicateEmail, domain.ErrDuplicateUsername or, when a
	// concurrent insert wins the race, domain.ErrStorageConflict.
	CreateUser(ctx context.Context, username, email, passwordHash string) (int64, error)
	// FindUserByEmail returns domain.ErrNotFound when no user has the email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindUserByID returns domain.ErrNotFound when the id is unknown.
	FindUserByID(ctx context.Context, id int64) (*domain.PublicUser, error)
}

// SessionRepository persists login sessions keyed by their bearer token.
type SessionRepository interface {
	CreateSession(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	// FindValidSession returns domain.ErrNotFound when the token is unknown or
	// its expiry is not after now.
	FindValidSession(ctx context.Context, token string, now time.Time) (*domain.Session, error)
	// DeleteSession is idempotent: deleting an absent token is not an error.
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions removes sessions whose expiry is not after now and
	// reports how many were removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// CredentialStore is a single engine holding both users and sessions.
type CredentialStore interface {
	UserRepository
	SessionRepository
	Ping(ctx context.Context) error
	Close() error
}
