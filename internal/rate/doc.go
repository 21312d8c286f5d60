// Package rate provides the Redis-backed fixed-window login throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys:
//   - <prefix>:rl:id:<identifier> (login per-identifier)
//   - <prefix>:rl:ip:<ip> (login per-IP)
//
// # What this package must NOT do
//
//   - Decide what a failed attempt is. Callers increment on failure.
//   - Be imported outside the hrAuth module.
package rate
