package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/athenaeum/authgate"
	"github.com/athenaeum/authgate/label"
	"github.com/athenaeum/authgate/password"
)

// Memory is an in-process account and entitlement store guarded by a single
// RWMutex. Reads are concurrent; writes are rare (provisioning only).
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]authgate.AccountRecord
	labels   map[string][]label.Label
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]authgate.AccountRecord),
		labels:   make(map[string][]label.Label),
	}
}

// PutAccount inserts or replaces an account, hashing the given password.
func (m *Memory) PutAccount(hasher *password.Hasher, username, plaintext string, enabled bool) error {
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password for %q: %w", username, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[username] = authgate.AccountRecord{
		Username:     username,
		PasswordHash: hash,
		Enabled:      enabled,
	}
	return nil
}

// GrantLabels replaces the label grants for a username.
func (m *Memory) GrantLabels(username string, labels ...label.Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[username] = append([]label.Label(nil), labels...)
}

// SetEnabled flips the enabled flag of an existing account.
func (m *Memory) SetEnabled(username string, enabled bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.accounts[username]
	if !ok {
		return false
	}
	record.Enabled = enabled
	m.accounts[username] = record
	return true
}

// SeedDefaults provisions the two stock accounts: admin/changeme with every
// label granted, and geoffrey/12345 with none.
func (m *Memory) SeedDefaults(hasher *password.Hasher) error {
	if err := m.PutAccount(hasher, "admin", "changeme", true); err != nil {
		return err
	}
	m.GrantLabels("admin", label.All()...)

	if err := m.PutAccount(hasher, "geoffrey", "12345", true); err != nil {
		return err
	}
	m.GrantLabels("geoffrey")

	return nil
}

// FindByUsername implements authgate.AccountStore.
func (m *Memory) FindByUsername(_ context.Context, username string) (authgate.AccountRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.accounts[username]
	return record, ok, nil
}

// LabelsByUsername implements authgate.EntitlementStore.
func (m *Memory) LabelsByUsername(_ context.Context, username string) ([]label.Label, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]label.Label(nil), m.labels[username]...), nil
}
