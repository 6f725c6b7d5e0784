package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/pennywise/expense-tracker/internal/core/domain"
	"github.com/pennywise/expense-tracker/internal/infrastructure/security"
)

// CreateUser inserts a user. Taken emails and usernames are detected first so
// the caller gets a precise error; the UNIQUE constraints still decide when two
// registrations race.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (int64, error) {
	var emailTaken, usernameTaken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT
			EXISTS(SELECT 1 FROM users WHERE email = ?),
			EXISTS(SELECT 1 FROM users WHERE username = ?)
	`, email, username).Scan(&emailTaken, &usernameTaken)
	if err != nil {
		return 0, oops.Code("STORE_CREATE_USER_FAILED").
			With("operation", "check existing user").
			Wrap(err)
	}
	switch {
	case emailTaken:
		return 0, domain.ErrDuplicateEmail
	case usernameTaken:
		return 0, domain.ErrDuplicateUsername
	}

	return s.insertUser(ctx, username, email, passwordHash)
}

func (s *Store) insertUser(ctx context.Context, username, email, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		username, email, passwordHash, toMillis(s.now()),
	)
	if err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return 0, conflict
		}
		return 0, oops.Code("STORE_CREATE_USER_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, oops.Code("STORE_CREATE_USER_FAILED").
			With("operation", "read inserted id").
			Wrap(err)
	}
	return id, nil
}

// uniqueViolation maps a UNIQUE constraint failure to the domain error for the
// offending column, or returns nil for any other error.
func uniqueViolation(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) || se.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return nil
	}
	msg := se.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return domain.ErrDuplicateEmail
	case strings.Contains(msg, "users.username"):
		return domain.ErrDuplicateUsername
	default:
		return domain.ErrStorageConflict
	}
}

// FindUserByEmail retrieves a user, including the password hash, by email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?",
		email,
	)

	var (
		u         domain.User
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, oops.Code("STORE_FIND_USER_FAILED").
			With("operation", "find user by email").
			Wrap(err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

// FindUserByID retrieves the public part of a user. The password hash is not
// even selected.
func (s *Store) FindUserByID(ctx context.Context, id int64) (*domain.PublicUser, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, created_at FROM users WHERE id = ?",
		id,
	)

	var (
		u         domain.PublicUser
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, oops.Code("STORE_FIND_USER_FAILED").
			With("operation", "find user by id").
			With("user_id", id).
			Wrap(err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

// CreateSession stores a session for userID. Only the token digest is persisted.
func (s *Store) CreateSession(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (user_id, session_token, created_at, expires_at) VALUES (?, ?, ?, ?)",
		userID, security.DigestToken(token), toMillis(s.now()), toMillis(expiresAt),
	)
	if err != nil {
		return oops.Code("STORE_CREATE_SESSION_FAILED").
			With("operation", "insert session").
			With("user_id", userID).
			Wrap(err)
	}
	return nil
}

// FindValidSession returns the session for token if it exists and expires
// strictly after now.
func (s *Store) FindValidSession(ctx context.Context, token string, now time.Time) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT user_id, created_at, expires_at FROM sessions WHERE session_token = ? AND expires_at > ?",
		security.DigestToken(token), toMillis(now),
	)

	var (
		sess                 domain.Session
		createdAt, expiresAt int64
	)
	if err := row.Scan(&sess.UserID, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, oops.Code("STORE_FIND_SESSION_FAILED").
			With("operation", "find valid session").
			Wrap(err)
	}
	sess.CreatedAt = fromMillis(createdAt)
	sess.ExpiresAt = fromMillis(expiresAt)
	return &sess, nil
}

// DeleteSession removes the session for token. Unknown tokens are a no-op.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_token = ?", security.DigestToken(token)); err != nil {
		return oops.Code("STORE_DELETE_SESSION_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// DeleteExpiredSessions removes every session that is no longer valid at now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", toMillis(now))
	if err != nil {
		return 0, oops.Code("STORE_PRUNE_SESSIONS_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, oops.Code("STORE_PRUNE_SESSIONS_FAILED").
			With("operation", "count deleted sessions").
			Wrap(err)
	}
	return n, nil
}

// UserCount returns the number of registered users.
func (s *Store) UserCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, oops.Code("STORE_COUNT_USERS_FAILED").Wrap(err)
	}
	return count, nil
}
