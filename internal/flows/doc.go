// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunSignup, RunCreateEmployee, RunLogin, RunRefresh, etc.) accepts
// a typed dependency struct and returns results without side-effects beyond those
// dependencies. Flow-local record types keep this package independent of the root
// package's value types.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the directory, identifier generator, token manager,
// login limiter, and metrics. They do NOT own any of these resources; ownership stays
// with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import hrAuth (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency closures.
package flows
