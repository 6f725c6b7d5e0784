package ports

import (
	"context"

	"github.com/pennywise/expense-tracker/internal/core/domain"
)

// RegisterResult is the outcome of AuthService.Register.
type RegisterResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	UserID  *int64             `json:"userId,omitempty"`
	Failure domain.FailureKind `json:"-"`
}

// LoginResult is the outcome of AuthService.Authenticate. SessionToken and
// UserID are nil on every failure path.
type LoginResult struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message"`
	SessionToken *string            `json:"sessionToken,omitempty"`
	UserID       *int64             `json:"userId,omitempty"`
	Failure      domain.FailureKind `json:"-"`
}

// VerifyResult is the outcome of AuthService.VerifySession.
type VerifyResult struct {
	Valid  bool   `json:"valid"`
	UserID *int64 `json:"userId,omitempty"`
}

// LogoutResult is the outcome of AuthService.Logout. Success is always true.
type LogoutResult struct {
	Success bool `json:"success"`
}

// AuthService is the policy layer over the credential store. None of its
// methods return an error: every failure is reported in the result value.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) RegisterResult
	Authenticate(ctx context.Context, email, password string) LoginResult
	VerifySession(ctx context.Context, token string) VerifyResult
	// GetUserByID returns nil for zero, negative or unknown ids.
	GetUserByID(ctx context.Context, id int64) *domain.PublicUser
	Logout(ctx context.Context, token string) LogoutResult
}
