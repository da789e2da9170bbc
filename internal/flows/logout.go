package flows

import (
	"context"
)

// LogoutSessionStore is the slice of the session store the logout flow needs.
type LogoutSessionStore interface {
	Delete(ctx context.Context, sessionID string) error
	DeleteAllForUser(ctx context.Context, username string) error
}

// LogoutMetrics carries metric IDs needed by the logout flows.
type LogoutMetrics struct {
	Logout             int
	LogoutAll          int
	SessionInvalidated int
	StoreUnavailable   int
}

// LogoutEvents carries audit event names used by the logout flows.
type LogoutEvents struct {
	Logout    string
	LogoutAll string
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	SessionStore LogoutSessionStore

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, username, sessionID string, cause error, meta func() map[string]string)

	Metrics LogoutMetrics
	Events  LogoutEvents

	EngineNotReadyErr error
}

// RunLogout invalidates a single session handle. The operation is idempotent:
// an empty, unknown, or already-expired handle is a successful no-op. Only a
// store fault returns an error.
func RunLogout(ctx context.Context, sessionID string, deps LogoutDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.SessionStore == nil {
		return deps.EngineNotReadyErr
	}

	if sessionID == "" {
		deps.MetricInc(deps.Metrics.Logout)
		deps.EmitAudit(ctx, deps.Events.Logout, true, "", "", nil, func() map[string]string {
			return map[string]string{
				"note": "no_handle_presented",
			}
		})
		return nil
	}

	if err := deps.SessionStore.Delete(ctx, sessionID); err != nil {
		deps.MetricInc(deps.Metrics.StoreUnavailable)
		deps.EmitAudit(ctx, deps.Events.Logout, false, "", sessionID, err, nil)
		return err
	}

	deps.MetricInc(deps.Metrics.SessionInvalidated)
	deps.MetricInc(deps.Metrics.Logout)
	deps.EmitAudit(ctx, deps.Events.Logout, true, "", sessionID, nil, nil)
	return nil
}

// RunLogoutAll invalidates every tracked session for a username.
func RunLogoutAll(ctx context.Context, username string, deps LogoutDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.SessionStore == nil {
		return deps.EngineNotReadyErr
	}

	if err := deps.SessionStore.DeleteAllForUser(ctx, username); err != nil {
		deps.MetricInc(deps.Metrics.StoreUnavailable)
		deps.EmitAudit(ctx, deps.Events.LogoutAll, false, username, "", err, nil)
		return err
	}

	deps.MetricInc(deps.Metrics.LogoutAll)
	deps.EmitAudit(ctx, deps.Events.LogoutAll, true, username, "", nil, nil)
	return nil
}
