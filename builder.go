package authgate

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/athenaeum/authgate/internal/rate"
	"github.com/athenaeum/authgate/password"
	"github.com/athenaeum/authgate/session"
)

// decoyPassword is the throwaway input for the decoy hash. Its value never
// matters; only the cost of comparing against its hash does.
const decoyPassword = "authgate-user-not-found"

// Builder assembles an [Engine]. Configure it with the With* methods, then
// call [Builder.Build] exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	accountStore     AccountStore
	entitlementStore EntitlementStore
	auditSink        AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing sessions and the login throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountStore sets the credential source.
func (b *Builder) WithAccountStore(s AccountStore) *Builder {
	b.accountStore = s
	return b
}

// WithEntitlementStore sets the label source.
func (b *Builder) WithEntitlementStore(s EntitlementStore) *Builder {
	b.entitlementStore = s
	return b
}

// WithAuditSink sets the destination for audit events. Effective only when
// Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the counter set.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the login latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires every subsystem, and returns a
// ready Engine. A Builder can build at most one Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.accountStore == nil {
		return nil, errors.New("account store required")
	}
	if b.entitlementStore == nil {
		return nil, errors.New("entitlement store required")
	}

	engine := &Engine{
		config: cfg,
		sessionStore: session.NewStore(
			b.redis,
			cfg.Session.RedisPrefix,
			cfg.Session.SlidingExpiration,
			cfg.Session.JitterEnabled,
			cfg.Session.JitterRange,
		),
		accountStore:     b.accountStore,
		entitlementStore: b.entitlementStore,
	}

	if cfg.Security.EnableLoginThrottle {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:      cfg.Security.EnableIPThrottle,
			MaxLoginAttempts:      cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration: cfg.Security.LoginCooldownDuration,
		})
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	ph, err := password.NewHasher(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MaxPasswordBytes: cfg.Password.MaxPasswordBytes,
	})
	if err != nil {
		return nil, err
	}
	engine.passwordHash = ph

	// Hashed once here so every credential miss can burn a full argon2
	// compare against it instead of returning early.
	decoy, err := ph.Hash(decoyPassword)
	if err != nil {
		return nil, err
	}
	engine.decoyHash = decoy

	engine.flows = engine.buildFlowDeps()

	b.built = true

	return engine, nil
}
