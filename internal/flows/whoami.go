package flows

import (
	"context"
	"errors"

	"github.com/athenaeum/authgate/label"
	"github.com/athenaeum/authgate/session"
)

// WhoAmIResult is the flow-local identity snapshot.
type WhoAmIResult struct {
	Username      string
	Authenticated bool
	Labels        label.Set
}

// WhoAmIMetrics carries metric IDs needed by the whoami flow.
type WhoAmIMetrics struct {
	Authenticated    int
	Anonymous        int
	StoreUnavailable int
}

// WhoAmIDeps captures whoami flow dependencies.
type WhoAmIDeps struct {
	// GetSession fetches and renews a session. A RedisNil error means the
	// handle is unknown or expired.
	GetSession func(ctx context.Context, sessionID string) (*session.Session, error)
	// ResolveLabels re-reads entitlements so a WhoAmI call reflects the
	// current grant set, not the login-time snapshot.
	ResolveLabels func(ctx context.Context, username string) (label.Set, error)
	RedisNil      error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, username, sessionID string, cause error, meta func() map[string]string)
	Warn      func(string, ...any)

	Metrics    WhoAmIMetrics
	AuditEvent string
}

// RunWhoAmI resolves a session handle to an identity snapshot. It never
// returns an error: absent, malformed, or expired handles yield an anonymous
// result, and so does a store fault (recorded in metrics and audit). Label
// resolution failures fall back to the labels frozen into the session at
// login.
func RunWhoAmI(ctx context.Context, sessionID string, deps WhoAmIDeps) WhoAmIResult {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}

	anonymous := WhoAmIResult{Authenticated: false}
	if deps.GetSession == nil || sessionID == "" {
		deps.MetricInc(deps.Metrics.Anonymous)
		return anonymous
	}

	sess, err := deps.GetSession(ctx, sessionID)
	if err != nil {
		if deps.RedisNil != nil && errors.Is(err, deps.RedisNil) {
			deps.MetricInc(deps.Metrics.Anonymous)
			return anonymous
		}
		deps.MetricInc(deps.Metrics.StoreUnavailable)
		deps.EmitAudit(ctx, deps.AuditEvent, false, "", sessionID, err, func() map[string]string {
			return map[string]string{
				"reason": "store_unavailable",
			}
		})
		return anonymous
	}

	labels := sess.Labels
	if deps.ResolveLabels != nil {
		fresh, err := deps.ResolveLabels(ctx, sess.Username)
		if err != nil {
			deps.Warn("authgate: whoami label refresh failed, serving login-time labels")
		} else {
			labels = fresh
		}
	}

	deps.MetricInc(deps.Metrics.Authenticated)
	return WhoAmIResult{
		Username:      sess.Username,
		Authenticated: true,
		Labels:        labels,
	}
}
