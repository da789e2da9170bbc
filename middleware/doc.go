// Package middleware exposes HTTP middleware adapters for session-based
// request authorization built on top of authgate.Engine lookups.
//
// # Guards
//
//   - [Guard] — requires an authenticated session; injects the resolved
//     identity into the request context.
//   - [RequireLabel] — Guard plus an entitlement check on a single label.
//
// Each guard reads the session cookie, calls Engine.WhoAmI, and injects the
// resolved [authgate.UserInfo] into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.WhoAmI.
//
// # What this package must NOT do
//
//   - Decode or mint session handles (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the resolved
//     identity and its labels.
package middleware
