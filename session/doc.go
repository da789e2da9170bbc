// Package session provides Redis-backed session persistence and a compact
// binary session encoding for the authentication hot path.
//
// # Lifecycle
//
// A session exists exactly while its Redis key exists: [Store.Save] creates it
// (ACTIVE), [Store.Delete] or TTL expiry removes it (INVALIDATED, terminal).
// There is no transition back — a fresh login always mints a new handle.
// Delete is idempotent: removing a missing or already-removed handle is a
// no-op, enforced atomically by a Lua script.
//
// # Binary encoding
//
// Sessions are stored as a compact binary blob (schema v1). The encoder is
// append-only: future versions add fields but never reinterpret old ones.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Session] model.
// It does NOT verify credentials or resolve entitlements — those
// responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import authgate or store (no upward imports).
//   - Make authentication decisions beyond key presence and expiry.
//   - Store credentials or plaintext secrets in [Session] fields.
package session
