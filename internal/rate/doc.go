// Package rate provides the Redis-backed login throttle used by the
// authentication engine.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - al:u:  — login per-username
//   - al:ip: — login per-client-IP
//
// # What this package must NOT do
//
//   - Verify credentials or touch sessions.
//   - Be imported outside the authgate module.
package rate
