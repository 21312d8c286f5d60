// Package hrAuth is the authentication core of a multi-tenant HR portal.
//
// A company signs up through [Engine.SignupAdmin], which registers the tenant under a
// short code derived from its name and creates its first admin. Admins provision
// employees with [Engine.CreateEmployee]; each employee receives a generated login ID
// (tenant prefix, name fragments, joining year, per-tenant yearly serial) and a
// temporary password that must be changed before anything else is allowed.
//
// Engine methods are safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// hrAuth is the public surface: [Engine], [Builder], [Config], the [Directory]
// persistence contract and value types. Flow orchestration and login throttling live
// under internal/. Storage backends (store/redis, store/postgres), HTTP middleware and
// metrics exporters import this package, never the other way round.
//
// # Tokens
//
// Access and refresh tokens are stateless HS256 JWTs signed with distinct secrets.
// [Engine.Validate] does no store round-trip; password-state and activation gating is
// done by [Engine.AccountState], which the middleware calls on guarded routes.
package hrAuth
