package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pennywise/expense-tracker/internal/api/metrics"
	"github.com/pennywise/expense-tracker/internal/core/domain"
	"github.com/pennywise/expense-tracker/internal/core/ports"
)

// User-facing messages. Callers match on some of them, so keep them stable.
const (
	msgMissingFields     = "Username, email, and password are required"
	msgPasswordTooShort  = "Password must be at least 6 characters"
	msgEmailTaken        = "Email already registered"
	msgUsernameTaken     = "Username already taken"
	msgCredentialTaken   = "Email or username already registered"
	msgRegistered        = "User registered successfully"
	msgRegisterFailed    = "Registration failed: storage unavailable"
	msgInvalidLogin      = "Invalid email or password"
	msgLoginSucceeded    = "Login successful"
	msgLoginFailed       = "Login failed: storage unavailable"
	dummyPasswordForHash = "timing-equaliser-not-a-real-password"
)

// AuthService implements registration, login and session checks on top of a
// credential store.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenGenerator
	log      zerolog.Logger

	ttl       time.Duration
	now       func() time.Time
	dummyHash string
}

var _ ports.AuthService = (*AuthService)(nil)

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithSessionTTL sets how long new sessions live. Non-positive values keep the default.
func WithSessionTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenGenerator,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
		ttl:      domain.DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Verified against when the email is unknown, so both failure paths cost
	// one hash verification.
	if h, err := hasher.Hash(dummyPasswordForHash); err == nil {
		s.dummyHash = h
	} else {
		log.Warn().Err(err).Msg("could not prepare dummy password hash")
	}
	return s
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the input in order, stopping at the first failure:
// required fields, password length, then email and username uniqueness.
func (s *AuthService) Register(ctx context.Context, username, email, password string) ports.RegisterResult {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	if username == "" || email == "" || password == "" {
		return s.registerFailure(domain.FailureValidation, msgMissingFields)
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return s.registerFailure(domain.FailureValidation, msgPasswordTooShort)
	}

	_, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return s.registerFailure(domain.FailureDuplicate, msgEmailTaken)
	case !errors.Is(err, domain.ErrNotFound):
		s.log.Error().Err(err).Str("email", email).Msg("register: email lookup failed")
		return s.registerFailure(domain.FailureStorage, msgRegisterFailed)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error().Err(err).Msg("register: hashing failed")
		return s.registerFailure(domain.FailureStorage, msgRegisterFailed)
	}

	id, err := s.users.CreateUser(ctx, username, email, hash)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return s.registerFailure(domain.FailureDuplicate, msgEmailTaken)
		case errors.Is(err, domain.ErrDuplicateUsername):
			return s.registerFailure(domain.FailureDuplicate, msgUsernameTaken)
		case errors.Is(err, domain.ErrStorageConflict):
			return s.registerFailure(domain.FailureDuplicate, msgCredentialTaken)
		}
		s.log.Error().Err(err).Str("username", username).Msg("register: create user failed")
		return s.registerFailure(domain.FailureStorage, msgRegisterFailed)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int64("user_id", id).Str("username", username).Msg("user registered")
	return ports.RegisterResult{Success: true, Message: msgRegistered, UserID: &id}
}

func (s *AuthService) registerFailure(kind domain.FailureKind, msg string) ports.RegisterResult {
	metrics.RegistrationsTotal.WithLabelValues(string(kind)).Inc()
	return ports.RegisterResult{Message: msg, Failure: kind}
}

// Authenticate checks the credentials and opens a new session. Unknown emails
// and wrong passwords produce the same result.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) ports.LoginResult {
	email = NormalizeEmail(email)

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Err(err).Msg("login: user lookup failed")
			return s.loginFailure(domain.FailureStorage, msgLoginFailed)
		}
		s.hasher.Verify(password, s.dummyHash)
		return s.loginFailure(domain.FailureAuthentication, msgInvalidLogin)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return s.loginFailure(domain.FailureAuthentication, msgInvalidLogin)
	}

	token, err := s.tokens.Generate()
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("login: token generation failed")
		return s.loginFailure(domain.FailureStorage, msgLoginFailed)
	}

	expiresAt := s.now().Add(s.ttl)
	if err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("login: create session failed")
		return s.loginFailure(domain.FailureStorage, msgLoginFailed)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int64("user_id", user.ID).Time("expires_at", expiresAt).Msg("session created")
	userID := user.ID
	return ports.LoginResult{
		Success:      true,
		Message:      msgLoginSucceeded,
		SessionToken: &token,
		UserID:       &userID,
	}
}

func (s *AuthService) loginFailure(kind domain.FailureKind, msg string) ports.LoginResult {
	metrics.LoginsTotal.WithLabelValues(string(kind)).Inc()
	return ports.LoginResult{Message: msg, Failure: kind}
}

// VerifySession reports whether token names an unexpired session.
func (s *AuthService) VerifySession(ctx context.Context, token string) ports.VerifyResult {
	if token == "" {
		metrics.SessionVerificationsTotal.WithLabelValues("invalid").Inc()
		return ports.VerifyResult{}
	}

	now := s.now()
	sess, err := s.sessions.FindValidSession(ctx, token, now)
	if err != nil || !sess.ValidAt(now) {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Err(err).Msg("verify session: lookup failed")
		}
		metrics.SessionVerificationsTotal.WithLabelValues("invalid").Inc()
		return ports.VerifyResult{}
	}

	metrics.SessionVerificationsTotal.WithLabelValues("valid").Inc()
	userID := sess.UserID
	return ports.VerifyResult{Valid: true, UserID: &userID}
}

// GetUserByID returns the public profile for id, or nil.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) *domain.PublicUser {
	if id <= 0 {
		return nil
	}
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Err(err).Int64("user_id", id).Msg("get user: lookup failed")
		}
		return nil
	}
	return user
}

// Logout deletes the session for token. It always succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) ports.LogoutResult {
	if token != "" {
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			s.log.Error().Err(err).Msg("logout: delete session failed")
		}
	}
	return ports.LogoutResult{Success: true}
}
