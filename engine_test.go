package authgate

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/athenaeum/authgate/label"
	"github.com/athenaeum/authgate/password"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

// mockDirectory backs both store interfaces for engine tests.
type mockDirectory struct {
	mu       sync.RWMutex
	accounts map[string]AccountRecord
	labels   map[string][]label.Label

	findErr   error
	labelsErr error
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		accounts: make(map[string]AccountRecord),
		labels:   make(map[string][]label.Label),
	}
}

func (d *mockDirectory) putAccount(t *testing.T, hasher *password.Hasher, username, plaintext string, enabled bool, labels ...label.Label) {
	t.Helper()

	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash %s: %v", username, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[username] = AccountRecord{
		Username:     username,
		PasswordHash: hash,
		Enabled:      enabled,
	}
	d.labels[username] = labels
}

func (d *mockDirectory) setEnabled(username string, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec := d.accounts[username]
	rec.Enabled = enabled
	d.accounts[username] = rec
}

func (d *mockDirectory) setLabels(username string, labels ...label.Label) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.labels[username] = labels
}

func (d *mockDirectory) FindByUsername(_ context.Context, username string) (AccountRecord, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.findErr != nil {
		return AccountRecord{}, false, d.findErr
	}
	rec, ok := d.accounts[username]
	return rec, ok, nil
}

func (d *mockDirectory) LabelsByUsername(_ context.Context, username string) ([]label.Label, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.labelsErr != nil {
		return nil, d.labelsErr
	}
	return d.labels[username], nil
}

// testConfig trims argon2 cost so the suite stays fast.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Session.JitterEnabled = false
	cfg.Session.JitterRange = 0
	return cfg
}

func testHasher(t *testing.T, cfg Config) *password.Hasher {
	t.Helper()

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return hasher
}

type testEnv struct {
	engine *Engine
	mr     *miniredis.Miniredis
	client *redis.Client
	dir    *mockDirectory
}

func buildTestEngine(t *testing.T, cfg Config, opts ...func(*Builder)) *testEnv {
	t.Helper()

	mr, client := newTestRedis(t)
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	hasher := testHasher(t, cfg)

	dir := newMockDirectory()
	dir.putAccount(t, hasher, "admin", "changeme", true, label.All()...)
	dir.putAccount(t, hasher, "geoffrey", "12345", true)
	dir.putAccount(t, hasher, "mallory", "hunter2", false)

	builder := New().
		WithConfig(cfg).
		WithRedis(client).
		WithAccountStore(dir).
		WithEntitlementStore(dir)
	for _, opt := range opts {
		opt(builder)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEnv{engine: engine, mr: mr, client: client, dir: dir}
}

func mustLogin(t *testing.T, env *testEnv, username, pass string) *LoginResult {
	t.Helper()

	res, err := env.engine.Login(context.Background(), username, pass, "")
	if err != nil {
		t.Fatalf("Login(%s) failed: %v", username, err)
	}
	return res
}
