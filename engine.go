package authgate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/athenaeum/authgate/internal"
	"github.com/athenaeum/authgate/internal/flows"
	"github.com/athenaeum/authgate/internal/rate"
	"github.com/athenaeum/authgate/label"
	"github.com/athenaeum/authgate/password"
	"github.com/athenaeum/authgate/session"
)

// Engine is the authentication gateway. Construct it through [Builder.Build];
// after that every method is safe for concurrent use.
type Engine struct {
	config           Config
	sessionStore     *session.Store
	rateLimiter      *rate.Limiter
	audit            *auditDispatcher
	metrics          *Metrics
	passwordHash     *password.Hasher
	accountStore     AccountStore
	entitlementStore EntitlementStore

	// decoyHash is burned on credential checks that miss, keeping their
	// cost indistinguishable from a wrong password.
	decoyHash string

	flows flows.Deps
}

// Close flushes and stops the audit dispatcher. The Engine must not be used
// afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login verifies the credentials and, on success, mints a fresh session.
// priorHandle is whatever session handle the caller presented with the
// request (empty when none): a successful login always invalidates it before
// minting, so a handle fixed before authentication never survives it.
//
// Failure collapses to [ErrInvalidCredentials] regardless of whether the
// account is missing, disabled, or the password wrong. [ErrLoginRateLimited]
// and [ErrStoreUnavailable] stay distinct.
func (e *Engine) Login(ctx context.Context, username, password, priorHandle string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	result, err := flows.RunLogin(ctx, username, password, priorHandle, e.flows.Login)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Result: AuthResult{
			Success:  true,
			Message:  MessageLoginSuccessful,
			Identity: result.Username,
			Labels:   result.Labels.Labels(),
		},
		SessionHandle: result.SessionID,
	}, nil
}

// Logout invalidates the session behind handle. It is idempotent: an empty,
// unknown, or expired handle still yields a successful result. Only
// [ErrStoreUnavailable] surfaces as an error.
func (e *Engine) Logout(ctx context.Context, handle string) (AuthResult, error) {
	if e == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	if err := flows.RunLogout(ctx, handle, e.flows.Logout); err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		Success: true,
		Message: MessageLogoutSuccessful,
	}, nil
}

// LogoutAll invalidates every tracked session for a username.
func (e *Engine) LogoutAll(ctx context.Context, username string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunLogoutAll(ctx, username, e.flows.Logout)
}

// WhoAmI resolves a session handle to the current identity. It never returns
// an error: a missing, malformed, or expired handle is an ordinary anonymous
// result, and a store fault degrades to anonymous while being counted and
// audited. Labels are re-read per call, so entitlement changes show up on the
// next request.
func (e *Engine) WhoAmI(ctx context.Context, handle string) UserInfo {
	if e == nil {
		return UserInfo{}
	}

	result := flows.RunWhoAmI(ctx, handle, e.flows.WhoAmI)
	info := UserInfo{
		Username:      result.Username,
		Authenticated: result.Authenticated,
	}
	if result.Authenticated {
		info.Labels = result.Labels.Labels()
	}
	return info
}

// ActiveSessionIDs lists the tracked session handles for a username.
func (e *Engine) ActiveSessionIDs(ctx context.Context, username string) ([]string, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	ids, err := e.sessionStore.ActiveSessionIDs(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ids, nil
}

// LoginAttempts returns the current failed-login counter for a username.
// Zero when throttling is disabled.
func (e *Engine) LoginAttempts(ctx context.Context, username string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	if e.rateLimiter == nil {
		return 0, nil
	}

	attempts, err := e.rateLimiter.LoginAttempts(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return attempts, nil
}

// Health pings the session store and reports reachability plus latency.
func (e *Engine) Health(ctx context.Context) (bool, time.Duration) {
	if e == nil || e.sessionStore == nil {
		return false, 0
	}
	latency, err := e.sessionStore.Ping(ctx)
	return err == nil, latency
}

func (e *Engine) buildFlowDeps() flows.Deps {
	metricInc := func(id int) { e.metricInc(MetricID(id)) }
	emitAudit := func(ctx context.Context, event string, success bool, username, sessionID string, cause error, meta func() map[string]string) {
		e.emitAudit(ctx, event, success, username, sessionID, cause, meta)
	}

	getAccount := func(ctx context.Context, username string) (flows.VerifyAccountRecord, bool, error) {
		record, found, err := e.accountStore.FindByUsername(ctx, username)
		if err != nil {
			return flows.VerifyAccountRecord{}, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return flows.VerifyAccountRecord{
			Username:     record.Username,
			PasswordHash: record.PasswordHash,
			Enabled:      record.Enabled,
		}, found, nil
	}

	verifyDeps := flows.VerifyDeps{
		GetAccount:        getAccount,
		VerifyPassword:    e.passwordHash.Verify,
		DecoyHash:         e.decoyHash,
		EngineNotReadyErr: ErrEngineNotReady,
	}

	resolveLabels := func(ctx context.Context, username string) (label.Set, error) {
		labels, err := e.entitlementStore.LabelsByUsername(ctx, username)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return label.FromLabels(labels), nil
	}

	loginDeps := flows.LoginDeps{
		ClientIPFromContext: clientIPFromContext,
		CheckLoginRate:      e.checkLoginRate,
		IncrementLoginRate:  e.incrementLoginRate,
		ResetLoginRate:      e.resetLoginRate,
		Verify: func(ctx context.Context, username, password string) (flows.VerifyOutcome, error) {
			return flows.RunVerify(ctx, username, password, verifyDeps)
		},
		ResolveLabels: resolveLabels,
		NewSessionID: func() (string, error) {
			sid, err := internal.NewSessionID()
			if err != nil {
				return "", err
			}
			return sid.String(), nil
		},
		SessionLifetime: func() time.Duration { return e.config.Session.TTL },
		SaveSession: func(ctx context.Context, sess *session.Session, ttl time.Duration) error {
			if err := e.sessionStore.Save(ctx, sess, ttl); err != nil {
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			return nil
		},
		DeleteSession: func(ctx context.Context, sessionID string) error {
			if !handleNamesSession(sessionID) {
				return nil
			}
			if err := e.sessionStore.Delete(ctx, sessionID); err != nil {
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			return nil
		},
		MetricInc:    metricInc,
		ObserveLogin: func(d time.Duration) { e.metrics.Observe(MetricLoginLatency, d) },
		EmitAudit:    emitAudit,
		Warn:         log.Printf,
		Metrics: flows.LoginMetrics{
			LoginSuccess:       int(MetricLoginSuccess),
			LoginFailure:       int(MetricLoginFailure),
			LoginRateLimited:   int(MetricLoginRateLimited),
			SessionCreated:     int(MetricSessionCreated),
			SessionInvalidated: int(MetricSessionInvalidated),
			StoreUnavailable:   int(MetricStoreUnavailable),
		},
		Events: flows.LoginEvents{
			LoginSuccess:     auditEventLoginSuccess,
			LoginFailure:     auditEventLoginFailure,
			LoginRateLimited: auditEventLoginRateLimited,
		},
		Errors: flows.LoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidCredentials: ErrInvalidCredentials,
			LoginRateLimited:   ErrLoginRateLimited,
			AccountNotFound:    ErrAccountNotFound,
			AccountDisabled:    ErrAccountDisabled,
		},
	}

	logoutDeps := flows.LogoutDeps{
		SessionStore: engineLogoutStore{engine: e},
		MetricInc:    metricInc,
		EmitAudit:    emitAudit,
		Metrics: flows.LogoutMetrics{
			Logout:             int(MetricLogout),
			LogoutAll:          int(MetricLogoutAll),
			SessionInvalidated: int(MetricSessionInvalidated),
			StoreUnavailable:   int(MetricStoreUnavailable),
		},
		Events: flows.LogoutEvents{
			Logout:    auditEventLogoutSession,
			LogoutAll: auditEventLogoutAll,
		},
		EngineNotReadyErr: ErrEngineNotReady,
	}

	whoAmIDeps := flows.WhoAmIDeps{
		GetSession: func(ctx context.Context, sessionID string) (*session.Session, error) {
			if !handleNamesSession(sessionID) {
				return nil, redis.Nil
			}
			sess, err := e.sessionStore.Get(ctx, sessionID, e.config.Session.AbsoluteSessionLifetime)
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return nil, err
				}
				return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			return sess, nil
		},
		ResolveLabels: resolveLabels,
		RedisNil:      redis.Nil,
		MetricInc:     metricInc,
		EmitAudit:     emitAudit,
		Warn:          log.Printf,
		Metrics: flows.WhoAmIMetrics{
			Authenticated:    int(MetricWhoAmIAuthenticated),
			Anonymous:        int(MetricWhoAmIAnonymous),
			StoreUnavailable: int(MetricStoreUnavailable),
		},
		AuditEvent: auditEventSessionLookup,
	}

	return flows.Deps{
		Login:  loginDeps,
		Logout: logoutDeps,
		WhoAmI: whoAmIDeps,
	}
}

// checkLoginRate fails open on limiter infrastructure faults: a down throttle
// must not deny service, credentials still gate the login.
func (e *Engine) checkLoginRate(ctx context.Context, username, ip string) error {
	if e.rateLimiter == nil {
		return nil
	}
	err := e.rateLimiter.CheckLogin(ctx, username, ip)
	if err == nil {
		return nil
	}
	if errors.Is(err, rate.ErrRateLimited) {
		e.emitRateLimit(ctx, "login", username)
		return err
	}
	log.Printf("authgate: login throttle check unavailable: %v", err)
	return nil
}

func (e *Engine) incrementLoginRate(ctx context.Context, username, ip string) error {
	if e.rateLimiter == nil {
		return nil
	}
	err := e.rateLimiter.IncrementLogin(ctx, username, ip)
	if err == nil {
		return nil
	}
	if errors.Is(err, rate.ErrRateLimited) {
		e.emitRateLimit(ctx, "login", username)
		return err
	}
	log.Printf("authgate: login throttle increment unavailable: %v", err)
	return nil
}

func (e *Engine) resetLoginRate(ctx context.Context, username, ip string) error {
	if e.rateLimiter == nil {
		return nil
	}
	return e.rateLimiter.ResetLogin(ctx, username, ip)
}

// handleNamesSession reports whether a presented handle has the shape of an
// issued session ID. Handles that cannot have been minted here are settled
// without a store round trip; the caller treats them as unknown.
func handleNamesSession(handle string) bool {
	_, err := internal.ParseSessionID(handle)
	return err == nil
}

type engineLogoutStore struct {
	engine *Engine
}

func (s engineLogoutStore) Delete(ctx context.Context, sessionID string) error {
	if !handleNamesSession(sessionID) {
		return nil
	}
	if err := s.engine.sessionStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s engineLogoutStore) DeleteAllForUser(ctx context.Context, username string) error {
	if err := s.engine.sessionStore.DeleteAllForUser(ctx, username); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
