package rate

import "errors"

var (
	// ErrRateLimited signals that the login attempt budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable signals a Redis transport or command failure.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
