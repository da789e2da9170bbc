package authgate

import "errors"

var (
	// ErrInvalidCredentials is the single external credential-failure error.
	// Unknown accounts, disabled accounts, and wrong passwords all collapse
	// into it; the distinction survives only in audit metadata.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotFound names a missing account in audit records. It never
	// crosses the Engine boundary; callers see ErrInvalidCredentials.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountDisabled names a disabled account in audit records. It never
	// crosses the Engine boundary; callers see ErrInvalidCredentials.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrStoreUnavailable reports an infrastructure fault in a backing store
	// (Redis, accounts, entitlements). It is never conflated with an
	// authentication failure.
	ErrStoreUnavailable = errors.New("backing store unavailable")
	// ErrLoginRateLimited reports an exhausted failed-login budget.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrEngineNotReady reports use of an Engine before Builder.Build wired
	// its dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
)
