// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunVerify, RunLogin, RunLogout, RunWhoAmI) accepts a
// typed dependency struct and returns results without side-effects beyond
// those dependencies. This design enables exhaustive unit testing with mock
// dependencies and keeps the Engine type thin.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the account store, entitlement store,
// session store, rate limiter, audit dispatcher, and metrics. They do NOT own
// any of these resources — ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authgate (to avoid import cycles).
//   - Perform I/O directly — all I/O is mediated through dependency funcs.
package flows
