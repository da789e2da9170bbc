package flows

import (
	"context"
)

// VerifyStatus tags the outcome of a credential check. Callers collapse all
// non-authenticated statuses into one external failure; the tag survives only
// in audit metadata.
type VerifyStatus uint8

const (
	VerifyAuthenticated VerifyStatus = iota
	VerifyAccountNotFound
	VerifyAccountDisabled
	VerifyBadCredential
)

// Reason returns the audit metadata string for a failed status.
func (s VerifyStatus) Reason() string {
	switch s {
	case VerifyAccountNotFound:
		return "account_not_found"
	case VerifyAccountDisabled:
		return "account_disabled"
	case VerifyBadCredential:
		return "password_mismatch"
	default:
		return ""
	}
}

// VerifyAccountRecord is the flow-local account model used by verify/login.
type VerifyAccountRecord struct {
	Username     string
	PasswordHash string
	Enabled      bool
}

// VerifyOutcome is the tagged result of RunVerify. Account is populated only
// when Status is VerifyAuthenticated.
type VerifyOutcome struct {
	Status  VerifyStatus
	Account VerifyAccountRecord
}

// VerifyDeps captures credential-check dependencies.
type VerifyDeps struct {
	// GetAccount returns the account for an exact, case-sensitive username
	// match. found=false means no such account; err is reserved for store
	// faults.
	GetAccount func(ctx context.Context, username string) (VerifyAccountRecord, bool, error)
	// VerifyPassword runs the constant-time argon2id comparison.
	VerifyPassword func(password, encodedHash string) (bool, error)
	// DecoyHash is a valid PHC hash of a throwaway password. Rejections that
	// would otherwise skip hashing burn a compare against it, so a missing or
	// disabled account costs the same argon2 work as a wrong password and the
	// response time cannot enumerate usernames.
	DecoyHash string

	EngineNotReadyErr error
}

// RunVerify checks a username/password pair against the account store. It is
// a pure read: no session state, no counters, no writes. Store faults surface
// as a non-nil error; every other result is a tagged outcome.
func RunVerify(ctx context.Context, username, password string, deps VerifyDeps) (VerifyOutcome, error) {
	if deps.GetAccount == nil || deps.VerifyPassword == nil {
		return VerifyOutcome{}, deps.EngineNotReadyErr
	}

	if username == "" || password == "" {
		return VerifyOutcome{Status: VerifyBadCredential}, nil
	}

	account, found, err := deps.GetAccount(ctx, username)
	if err != nil {
		return VerifyOutcome{}, err
	}
	if !found {
		// A miss must not return faster than a mismatch.
		_, _ = deps.VerifyPassword(password, deps.DecoyHash)
		return VerifyOutcome{Status: VerifyAccountNotFound}, nil
	}

	if !account.Enabled {
		// The real hash is never compared for a disabled account, but the
		// rejection still burns the same work as a wrong password.
		_, _ = deps.VerifyPassword(password, deps.DecoyHash)
		return VerifyOutcome{Status: VerifyAccountDisabled}, nil
	}

	ok, err := deps.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok {
		return VerifyOutcome{Status: VerifyBadCredential}, nil
	}

	return VerifyOutcome{Status: VerifyAuthenticated, Account: account}, nil
}
