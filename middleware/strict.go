package middleware

import (
	"errors"
	"net/http"

	hrAuth "github.com/MrEthical07/hrAuth"
)

// RequireStrict verifies the token and then the account state. See
// [RequirePasswordCurrent].
func RequireStrict(engine *hrAuth.Engine) func(http.Handler) http.Handler {
	guard := Guard(engine)
	current := RequirePasswordCurrent(engine)
	return func(next http.Handler) http.Handler {
		return guard(current(next))
	}
}

// RequirePasswordCurrent reads the caller's account and answers 403
// "password_reset_required" while a temporary password is still in use, and 403
// "account_deactivated" for deactivated accounts. It must run after [Guard].
//
// Handlers that perform the password change itself must not be wrapped.
func RequirePasswordCurrent(engine *hrAuth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || engine == nil {
				WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			state, err := engine.AccountState(r.Context(), claims.AccountID)
			switch {
			case errors.Is(err, hrAuth.ErrNotFound):
				WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			case errors.Is(err, hrAuth.ErrStoreUnavailable):
				WriteError(w, http.StatusServiceUnavailable, "store_unavailable")
				return
			case err != nil:
				WriteError(w, http.StatusInternalServerError, "internal_error")
				return
			}

			if !state.Active {
				WriteError(w, http.StatusForbidden, "account_deactivated")
				return
			}
			if state.MustResetPassword() {
				WriteError(w, http.StatusForbidden, "password_reset_required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
