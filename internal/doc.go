// Package internal holds shared helpers used by the engine and its flows.
//
// # Architecture boundaries
//
// This package depends on nothing outside the standard library. It exposes
// the opaque session handle type and its generation/parsing, and nothing
// else. Flow orchestration lives in internal/flows; rate limiting lives in
// internal/rate.
//
// # What this package must NOT do
//
//   - Talk to Redis or any backing store.
//   - Know about accounts, entitlements, or audit.
package internal
