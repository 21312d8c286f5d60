package hrAuth

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is matched by every [*ConflictError].
	ErrConflict = errors.New("unique constraint violated")
	// ErrStoreUnavailable reports a persistence or counter backend failure or timeout.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidCredentials covers unknown identifiers and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDeactivated is returned for any authentication attempt against an inactive account.
	ErrAccountDeactivated = errors.New("account deactivated")
	// ErrTokenInvalid covers malformed, forged, expired, and wrong-kind tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrIdentifierCollision reports a generated login identifier that already exists.
	// It indicates a counter inconsistency and is not retried.
	ErrIdentifierCollision = errors.New("login identifier collision")
	// ErrSerialOverflow reports a serial that no longer fits the identifier format.
	ErrSerialOverflow = errors.New("login identifier serial overflow")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	// ErrPasswordPolicy reports a password outside the accepted length bounds.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is returned when the new password equals the current one.
	ErrPasswordReuse         = errors.New("new password must be different from current password")
	ErrLoginRateLimited      = errors.New("login rate limited")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrEngineNotReady        = errors.New("engine not initialized")
)

// ConflictError names the unique field that rejected a write.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConflict, e.Field)
}

// Is reports ErrConflict as a match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflict returns a [*ConflictError] for field.
func NewConflict(field string) error {
	return &ConflictError{Field: field}
}

// Unique fields reported in [ConflictError.Field].
const (
	FieldTenantCode = "tenant_code"
	FieldLoginID    = "login_id"
	FieldEmail      = "email"
)
