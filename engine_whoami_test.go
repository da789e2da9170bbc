package authgate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/athenaeum/authgate/label"
)

func TestWhoAmIAuthenticated(t *testing.T) {
	env := buildTestEngine(t, testConfig())

	res := mustLogin(t, env, "admin", "changeme")

	info := env.engine.WhoAmI(context.Background(), res.SessionHandle)
	if !info.Authenticated {
		t.Fatal("expected authenticated")
	}
	if info.Username != "admin" {
		t.Fatalf("username = %q, want admin", info.Username)
	}
	if len(info.Labels) != label.Count {
		t.Fatalf("labels = %d, want %d", len(info.Labels), label.Count)
	}
}

func TestWhoAmIAnonymous(t *testing.T) {
	env := buildTestEngine(t, testConfig())
	ctx := context.Background()

	for _, handle := range []string{"", "never-issued", "not base64 at all!"} {
		info := env.engine.WhoAmI(ctx, handle)
		if info.Authenticated {
			t.Fatalf("handle %q resolved as authenticated", handle)
		}
		if info.Username != "" || info.Labels != nil {
			t.Fatalf("anonymous result carries identity: %+v", info)
		}
	}
}

func TestWhoAmIZeroLabelUser(t *testing.T) {
	env := buildTestEngine(t, testConfig())

	res := mustLogin(t, env, "geoffrey", "12345")

	info := env.engine.WhoAmI(context.Background(), res.SessionHandle)
	if !info.Authenticated {
		t.Fatal("expected authenticated")
	}
	if len(info.Labels) != 0 {
		t.Fatalf("labels = %v, want none", info.Labels)
	}
}

func TestWhoAmIExpiredSession(t *testing.T) {
	cfg := testConfig()
	cfg.Session.TTL = time.Minute
	cfg.Session.AbsoluteSessionLifetime = time.Hour
	env := buildTestEngine(t, cfg)

	res := mustLogin(t, env, "admin", "changeme")

	env.mr.FastForward(2 * time.Minute)

	if info := env.engine.WhoAmI(context.Background(), res.SessionHandle); info.Authenticated {
		t.Fatal("expired session still resolves")
	}
}

// WhoAmI never errors: a store fault degrades to anonymous and is counted.
func TestWhoAmIStoreDownDegradesToAnonymous(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	env := buildTestEngine(t, cfg)

	res := mustLogin(t, env, "admin", "changeme")
	env.mr.Close()

	info := env.engine.WhoAmI(context.Background(), res.SessionHandle)
	if info.Authenticated {
		t.Fatal("store fault resolved as authenticated")
	}

	snap := env.engine.MetricsSnapshot()
	if snap.Counters[MetricStoreUnavailable] == 0 {
		t.Fatal("store fault not counted")
	}
}

// A handle that could not have been issued is settled without touching the
// store: no round trip, no fault counted even when the store is down.
func TestWhoAmIMalformedHandleSkipsStore(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	env := buildTestEngine(t, cfg)
	env.mr.Close()

	info := env.engine.WhoAmI(context.Background(), "never-issued")
	if info.Authenticated {
		t.Fatal("malformed handle resolved as authenticated")
	}

	snap := env.engine.MetricsSnapshot()
	if snap.Counters[MetricStoreUnavailable] != 0 {
		t.Fatalf("store faults = %d, want 0 for a malformed handle", snap.Counters[MetricStoreUnavailable])
	}
}

// Entitlement changes show up on the next lookup because labels are re-read
// per call.
func TestWhoAmIReflectsLabelChanges(t *testing.T) {
	env := buildTestEngine(t, testConfig())
	ctx := context.Background()

	res := mustLogin(t, env, "geoffrey", "12345")

	env.dir.setLabels("geoffrey", label.History, label.Geography)

	info := env.engine.WhoAmI(ctx, res.SessionHandle)
	if len(info.Labels) != 2 {
		t.Fatalf("labels = %v, want 2", info.Labels)
	}
}

// When the entitlement store faults, the lookup serves the label snapshot
// taken at login instead of failing.
func TestWhoAmILabelFaultServesSnapshot(t *testing.T) {
	env := buildTestEngine(t, testConfig())

	res := mustLogin(t, env, "admin", "changeme")

	env.dir.labelsErr = errors.New("connection refused")

	info := env.engine.WhoAmI(context.Background(), res.SessionHandle)
	if !info.Authenticated {
		t.Fatal("label fault degraded authentication")
	}
	if len(info.Labels) != label.Count {
		t.Fatalf("labels = %d, want login-time snapshot of %d", len(info.Labels), label.Count)
	}
}

func TestWhoAmIMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	env := buildTestEngine(t, cfg)
	ctx := context.Background()

	res := mustLogin(t, env, "admin", "changeme")

	env.engine.WhoAmI(ctx, res.SessionHandle)
	env.engine.WhoAmI(ctx, "")
	env.engine.WhoAmI(ctx, "never-issued")

	snap := env.engine.MetricsSnapshot()
	if snap.Counters[MetricWhoAmIAuthenticated] != 1 {
		t.Fatalf("authenticated = %d, want 1", snap.Counters[MetricWhoAmIAuthenticated])
	}
	if snap.Counters[MetricWhoAmIAnonymous] != 2 {
		t.Fatalf("anonymous = %d, want 2", snap.Counters[MetricWhoAmIAnonymous])
	}
}
