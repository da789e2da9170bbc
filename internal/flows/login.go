package flows

import (
	"context"
	"time"

	"github.com/athenaeum/authgate/label"
	"github.com/athenaeum/authgate/session"
)

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	SessionID string
	Username  string
	Labels    label.Set
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess       int
	LoginFailure       int
	LoginRateLimited   int
	SessionCreated     int
	SessionInvalidated int
	StoreUnavailable   int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess     string
	LoginFailure     string
	LoginRateLimited string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
// AccountNotFound and AccountDisabled never leave the flow; they only feed
// the audit record before the failure collapses to InvalidCredentials.
type LoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	LoginRateLimited   error
	AccountNotFound    error
	AccountDisabled    error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	ClientIPFromContext func(context.Context) string
	Now                 func() time.Time

	CheckLoginRate     func(ctx context.Context, username, ip string) error
	IncrementLoginRate func(ctx context.Context, username, ip string) error
	ResetLoginRate     func(ctx context.Context, username, ip string) error

	Verify        func(ctx context.Context, username, password string) (VerifyOutcome, error)
	ResolveLabels func(ctx context.Context, username string) (label.Set, error)

	NewSessionID    func() (string, error)
	SessionLifetime func() time.Duration
	SaveSession     func(ctx context.Context, sess *session.Session, ttl time.Duration) error
	DeleteSession   func(ctx context.Context, sessionID string) error

	MetricInc    func(int)
	ObserveLogin func(time.Duration)
	EmitAudit    func(ctx context.Context, event string, success bool, username, sessionID string, cause error, meta func() map[string]string)
	Warn         func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin executes the full login flow: rate-limit check, credential
// verification, prior-handle invalidation, entitlement resolution, and
// session minting. priorHandle is the session handle presented with the
// request, if any; a successful login always invalidates it and mints a
// fresh one.
func RunLogin(ctx context.Context, username, password, priorHandle string, deps LoginDeps) (*LoginResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.ObserveLogin == nil {
		deps.ObserveLogin = func(time.Duration) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.Verify == nil ||
		deps.ResolveLabels == nil ||
		deps.NewSessionID == nil ||
		deps.SessionLifetime == nil ||
		deps.SaveSession == nil ||
		deps.DeleteSession == nil {
		return nil, deps.Errors.EngineNotReady
	}

	start := deps.Now()
	defer func() { deps.ObserveLogin(deps.Now().Sub(start)) }()

	ip := deps.ClientIPFromContext(ctx)

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, username, ip); err != nil {
			deps.MetricInc(deps.Metrics.LoginRateLimited)
			deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, username, "", deps.Errors.LoginRateLimited, nil)
			return nil, deps.Errors.LoginRateLimited
		}
	}

	outcome, err := deps.Verify(ctx, username, password)
	if err != nil {
		deps.MetricInc(deps.Metrics.StoreUnavailable)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, username, "", err, func() map[string]string {
			return map[string]string{
				"reason": "store_unavailable",
			}
		})
		return nil, err
	}
	if outcome.Status != VerifyAuthenticated {
		if deps.IncrementLoginRate != nil {
			if err := deps.IncrementLoginRate(ctx, username, ip); err != nil {
				deps.MetricInc(deps.Metrics.LoginRateLimited)
				deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, username, "", deps.Errors.LoginRateLimited, nil)
				return nil, deps.Errors.LoginRateLimited
			}
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		reason := outcome.Status.Reason()
		cause := deps.Errors.InvalidCredentials
		switch outcome.Status {
		case VerifyAccountNotFound:
			if deps.Errors.AccountNotFound != nil {
				cause = deps.Errors.AccountNotFound
			}
		case VerifyAccountDisabled:
			if deps.Errors.AccountDisabled != nil {
				cause = deps.Errors.AccountDisabled
			}
		}
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, username, "", cause, func() map[string]string {
			return map[string]string{
				"reason": reason,
			}
		})
		// The three failure kinds collapse here: callers cannot tell an
		// unknown account from a disabled one or a wrong password.
		return nil, deps.Errors.InvalidCredentials
	}
	password = ""

	// Session fixation defense: a handle presented before authentication
	// must never survive it. Delete is idempotent, so a stale or bogus
	// prior handle costs nothing.
	if priorHandle != "" {
		if err := deps.DeleteSession(ctx, priorHandle); err != nil {
			deps.MetricInc(deps.Metrics.StoreUnavailable)
			deps.EmitAudit(ctx, deps.Events.LoginFailure, false, username, "", err, func() map[string]string {
				return map[string]string{
					"reason": "prior_handle_invalidation_failed",
				}
			})
			return nil, err
		}
		deps.MetricInc(deps.Metrics.SessionInvalidated)
	}

	labels, err := deps.ResolveLabels(ctx, outcome.Account.Username)
	if err != nil {
		deps.MetricInc(deps.Metrics.StoreUnavailable)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, username, "", err, func() map[string]string {
			return map[string]string{
				"reason": "entitlement_resolution_failed",
			}
		})
		return nil, err
	}

	sessionID, err := deps.NewSessionID()
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, username, "", err, func() map[string]string {
			return map[string]string{
				"reason": "session_id_generation",
			}
		})
		return nil, err
	}

	now := deps.Now()
	lifetime := deps.SessionLifetime()
	sess := &session.Session{
		SessionID: sessionID,
		Username:  outcome.Account.Username,
		Labels:    labels,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(lifetime).Unix(),
	}

	if err := deps.SaveSession(ctx, sess, lifetime); err != nil {
		deps.MetricInc(deps.Metrics.StoreUnavailable)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, username, sessionID, err, func() map[string]string {
			return map[string]string{
				"reason": "session_save_failed",
			}
		})
		return nil, err
	}

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, username, ip); err != nil {
			// Counter cleanup is best-effort; the session already exists.
			deps.Warn("authgate: failed-login counter reset failed")
		}
	}

	deps.MetricInc(deps.Metrics.SessionCreated)
	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, outcome.Account.Username, sessionID, nil, nil)

	return &LoginResult{
		SessionID: sessionID,
		Username:  outcome.Account.Username,
		Labels:    labels,
	}, nil
}
