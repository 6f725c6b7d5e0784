package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrStorageConflict is a uniqueness violation the store could not attribute
	// to a specific column.
	ErrStorageConflict = errors.New("storage conflict")
	// ErrUnauthorized is returned when a request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidExpense is returned for expense payloads the service rejects.
	ErrInvalidExpense = errors.New("invalid expense")
)

// FailureKind classifies why an auth operation did not succeed.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureValidation     FailureKind = "validation"
	FailureDuplicate      FailureKind = "duplicate"
	FailureAuthentication FailureKind = "authentication"
	FailureStorage        FailureKind = "storage"
)
