// Package counter provides durable per-(tenant, year) serial counters with an atomic
// increment-and-read primitive.
//
// # Contract
//
// Increment must be atomic under concurrent callers for the same key: N concurrent calls
// return exactly {1..N}. A missing key behaves as 0, so the first returned value is 1.
// Values are never decremented or reset.
//
// # What this package must NOT do
//
//   - Keep counter state in process memory. Several service instances may share a key.
//   - Implement read-then-write sequences without a server-side atomic primitive.
package counter
