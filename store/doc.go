// Package store ships ready-made AccountStore and EntitlementStore
// implementations: an in-memory store for tests, examples, and small
// deployments, and a PostgreSQL store for production use.
//
// # Architecture boundaries
//
// This package implements the interfaces authgate declares; it never reaches
// into sessions, rate limiting, or audit. Account provisioning policy
// (password rules, who gets which labels) belongs to the caller.
package store
