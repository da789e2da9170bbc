package authgate

import (
	"context"
	"errors"
	"testing"
)

// A session handle presented before login must never survive a successful
// login: the engine invalidates it and mints a fresh one.
func TestLoginRotatesPriorHandle(t *testing.T) {
	env := buildTestEngine(t, testConfig())
	ctx := context.Background()

	first := mustLogin(t, env, "admin", "changeme")

	second, err := env.engine.Login(ctx, "admin", "changeme", first.SessionHandle)
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	if second.SessionHandle == first.SessionHandle {
		t.Fatal("login reused the presented handle")
	}

	if info := env.engine.WhoAmI(ctx, first.SessionHandle); info.Authenticated {
		t.Fatal("prior handle still resolves after login")
	}
	if info := env.engine.WhoAmI(ctx, second.SessionHandle); !info.Authenticated {
		t.Fatal("fresh handle does not resolve")
	}
}

// An unknown prior handle must not block the login; invalidating it is a
// no-op.
func TestLoginWithUnknownPriorHandle(t *testing.T) {
	env := buildTestEngine(t, testConfig())

	res, err := env.engine.Login(context.Background(), "admin", "changeme", "never-issued")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.SessionHandle == "" || res.SessionHandle == "never-issued" {
		t.Fatalf("handle = %q", res.SessionHandle)
	}
}

func TestLogout(t *testing.T) {
	env := buildTestEngine(t, testConfig())
	ctx := context.Background()

	res := mustLogin(t, env, "admin", "changeme")

	out, err := env.engine.Logout(ctx, res.SessionHandle)
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if !out.Success || out.Message != MessageLogoutSuccessful {
		t.Fatalf("result = %+v", out)
	}

	if info := env.engine.WhoAmI(ctx, res.SessionHandle); info.Authenticated {
		t.Fatal("session survived logout")
	}
}

// Logout is idempotent: repeated, unknown, and empty handles all succeed.
func TestLogoutIdempotent(t *testing.T) {
	env := buildTestEngine(t, testConfig())
	ctx := context.Background()

	res := mustLogin(t, env, "admin", "changeme")

	for i := 0; i < 3; i++ {
		out, err := env.engine.Logout(ctx, res.SessionHandle)
		if err != nil {
			t.Fatalf("logout %d failed: %v", i, err)
		}
		if !out.Success {
			t.Fatalf("logout %d not successful", i)
		}
	}

	for _, handle := range []string{"", "never-issued"} {
		out, err := env.engine.Logout(ctx, handle)
		if err != nil {
			t.Fatalf("logout(%q) failed: %v", handle, err)
		}
		if out.Message != MessageLogoutSuccessful {
			t.Fatalf("logout(%q) message = %q", handle, out.Message)
		}
	}
}

func TestLogoutStoreDown(t *testing.T) {
	env := buildTestEngine(t, testConfig())

	res := mustLogin(t, env, "admin", "changeme")
	env.mr.Close()

	_, err := env.engine.Logout(context.Background(), res.SessionHandle)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}

// Logout of a handle that could not have been issued settles without a store
// round trip; a well-formed handle still reaches the store.
func TestLogoutMalformedHandleSkipsStore(t *testing.T) {
	env := buildTestEngine(t, testConfig())
	env.mr.Close()
	ctx := context.Background()

	out, err := env.engine.Logout(ctx, "never-issued")
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if out.Message != MessageLogoutSuccessful {
		t.Fatalf("message = %q, want %q", out.Message, MessageLogoutSuccessful)
	}

	wellFormed := "AAAAAAAAAAAAAAAAAAAAAA" // decodes to a full 16-byte ID
	if _, err := env.engine.Logout(ctx, wellFormed); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestLogoutAll(t *testing.T) {
	env := buildTestEngine(t, testConfig())
	ctx := context.Background()

	first := mustLogin(t, env, "admin", "changeme")
	second, err := env.engine.Login(ctx, "admin", "changeme", "")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	ids, err := env.engine.ActiveSessionIDs(ctx, "admin")
	if err != nil {
		t.Fatalf("ActiveSessionIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("active sessions = %d, want 2", len(ids))
	}

	if err := env.engine.LogoutAll(ctx, "admin"); err != nil {
		t.Fatalf("LogoutAll failed: %v", err)
	}

	for _, handle := range []string{first.SessionHandle, second.SessionHandle} {
		if info := env.engine.WhoAmI(ctx, handle); info.Authenticated {
			t.Fatalf("session %s survived LogoutAll", handle)
		}
	}

	ids, err = env.engine.ActiveSessionIDs(ctx, "admin")
	if err != nil {
		t.Fatalf("ActiveSessionIDs after LogoutAll failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("active sessions = %d, want 0", len(ids))
	}
}

func TestHealth(t *testing.T) {
	env := buildTestEngine(t, testConfig())

	healthy, _ := env.engine.Health(context.Background())
	if !healthy {
		t.Fatal("expected healthy store")
	}

	env.mr.Close()
	healthy, _ = env.engine.Health(context.Background())
	if healthy {
		t.Fatal("expected unhealthy store after close")
	}
}
