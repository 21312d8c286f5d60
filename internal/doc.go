// Package internal holds code private to hrAuth.
//
// # Sub-packages
//
//   - flows: flow orchestrators behind every Engine operation
//   - rate: Redis-backed login throttling
//   - httpapi: the JSON/HTTP surface served by cmd/hrauth
package internal
