package domain

import "time"

// MinPasswordLength is the shortest password registration accepts.
const MinPasswordLength = 6

// DefaultSessionTTL is how long a session stays valid after login.
const DefaultSessionTTL = 7 * 24 * time.Hour

// User is an account as the credential store holds it. PasswordHash never
// leaves the store and auth service; outward-facing code works with PublicUser.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Public strips the secret from u.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the shape of a user that may be handed to route logic and
// serialised into responses.
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is a login issued to a user. Many sessions may point at the same
// user; ExpiresAt is fixed at creation and never extended.
type Session struct {
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ValidAt reports whether the session is still usable at t.
func (s *Session) ValidAt(t time.Time) bool {
	return s != nil && s.ExpiresAt.After(t)
}

// Caller is the identity resolved for an incoming request.
type Caller struct {
	UserID int64       `json:"userId"`
	User   *PublicUser `json:"user"`
}
