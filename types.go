package authgate

import (
	"context"

	"github.com/athenaeum/authgate/label"
)

// Messages returned to callers. The failure message is deliberately generic:
// it is the only text an unauthenticated caller ever sees.
const (
	MessageLoginSuccessful    = "Login successful"
	MessageLogoutSuccessful   = "Logout successful"
	MessageInvalidCredentials = "Invalid username or password"
)

// AccountRecord is the account row authgate needs for credential checks.
// PasswordHash is an argon2id PHC string.
type AccountRecord struct {
	Username     string
	PasswordHash string
	Enabled      bool
}

// AccountStore is the interface callers implement to integrate authgate with
// their user database. Lookup is an exact, case-sensitive username match:
// found=false means no such account, err is reserved for store faults.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (AccountRecord, bool, error)
}

// EntitlementStore resolves a username to its granted labels. An unknown
// username yields an empty slice, never an error; err is reserved for store
// faults.
type EntitlementStore interface {
	LabelsByUsername(ctx context.Context, username string) ([]label.Label, error)
}

// AuthResult is the caller-facing outcome of Login and Logout.
type AuthResult struct {
	Success  bool
	Message  string
	Identity string
	Labels   []label.Label
}

// LoginResult pairs the auth outcome with the freshly minted session handle.
type LoginResult struct {
	Result        AuthResult
	SessionHandle string
}

// UserInfo is the identity snapshot returned by [Engine.WhoAmI]. For an
// unauthenticated caller Username is empty and Labels is nil.
type UserInfo struct {
	Username      string
	Authenticated bool
	Labels        []label.Label
}
