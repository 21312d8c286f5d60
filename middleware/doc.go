// Package middleware exposes net/http adapters that gate handlers on hrAuth.Engine
// token validation and account state.
//
// # Guards
//
//   - [Guard] verifies the bearer access token. No store call.
//   - [RequireRole] admits only the listed roles. Must run after Guard.
//   - [RequirePasswordCurrent] reads the account and rejects accounts that still owe a
//     password change or were deactivated after the token was issued.
//   - [RequireStrict] is Guard followed by RequirePasswordCurrent.
//
// Validated claims are stored in the request context; read them with
// [ClaimsFromContext].
//
// This package translates HTTP semantics into Engine calls. It does not parse tokens or
// touch a store itself.
package middleware
