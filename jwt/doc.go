// Package jwt issues and verifies the stateless access/refresh token pair.
//
// Access and refresh tokens are HS256-signed with distinct secrets and lifetimes and carry
// the same identity claims plus a "use" marker, so a token of one kind never verifies as
// the other even if the secrets were accidentally shared.
package jwt
