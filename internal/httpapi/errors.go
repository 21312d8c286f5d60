package httpapi

import (
	"errors"
	"net/http"

	hrAuth "github.com/MrEthical07/hrAuth"
)

type apiError struct {
	status  int
	code    string
	message string
}

var errorTable = []struct {
	target error
	apiError
}{
	{hrAuth.ErrInvalidCredentials, apiError{http.StatusUnauthorized, "invalid_credentials", "Invalid credentials"}},
	{hrAuth.ErrTokenInvalid, apiError{http.StatusUnauthorized, "invalid_token", "Invalid or expired token"}},
	{hrAuth.ErrAccountDeactivated, apiError{http.StatusForbidden, "account_deactivated", "Account is deactivated"}},
	{hrAuth.ErrPasswordResetRequired, apiError{http.StatusForbidden, "password_reset_required", "Password change required"}},
	{hrAuth.ErrLoginRateLimited, apiError{http.StatusTooManyRequests, "rate_limited", "Too many login attempts"}},
	{hrAuth.ErrPasswordPolicy, apiError{http.StatusBadRequest, "password_policy", "Password does not meet policy"}},
	{hrAuth.ErrPasswordReuse, apiError{http.StatusBadRequest, "password_reuse", "New password must be different from current password"}},
	{hrAuth.ErrInvalidRequest, apiError{http.StatusBadRequest, "invalid_request", "Invalid request"}},
	{hrAuth.ErrNotFound, apiError{http.StatusNotFound, "not_found", "Not found"}},
	{hrAuth.ErrStoreUnavailable, apiError{http.StatusServiceUnavailable, "store_unavailable", "Service temporarily unavailable"}},
	{hrAuth.ErrSerialOverflow, apiError{http.StatusUnprocessableEntity, "serial_overflow", "No login identifiers left for this year"}},
}

func classify(err error) apiError {
	var conflict *hrAuth.ConflictError
	if errors.As(err, &conflict) {
		return apiError{http.StatusConflict, "conflict", conflictMessage(conflict.Field)}
	}

	for _, row := range errorTable {
		if errors.Is(err, row.target) {
			return row.apiError
		}
	}
	return apiError{http.StatusInternalServerError, "internal", "Internal server error"}
}

func conflictMessage(field string) string {
	switch field {
	case hrAuth.FieldEmail:
		return "Email already registered"
	case hrAuth.FieldTenantCode:
		return "Company code already in use"
	case hrAuth.FieldLoginID:
		return "Login ID already in use"
	default:
		return "Conflict"
	}
}
