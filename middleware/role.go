package middleware

import (
	"net/http"
	"slices"

	hrAuth "github.com/MrEthical07/hrAuth"
)

// RequireRole admits requests whose claims carry one of roles and answers 403 otherwise.
// Requests without claims get 401.
func RequireRole(roles ...hrAuth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !slices.Contains(roles, claims.Role) {
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
