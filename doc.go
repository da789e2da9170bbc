// Package authgate provides a transport-agnostic authentication gateway:
// credential verification against a pluggable account store, server-side
// Redis-backed sessions addressed by opaque handles, and per-user content
// entitlements expressed as labels.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, UserInfo, MetricsSnapshot). All internal
// coordination — flow orchestration, session encoding, rate limiting, audit
// dispatch — lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
//   - Read session handles from transport state; the handle is always an
//     explicit argument, cookie extraction belongs to the caller.
//   - Import any sub-package that re-imports authgate (no import cycles).
//
// # Performance contract
//
// WhoAmI is the hot path. It is allowed one Redis round-trip for the session
// read (plus an EXPIRE when sliding renewal fires) and one account-store read
// for label refresh. Login and Logout are allowed one store round-trip per
// dependency touched.
package authgate
