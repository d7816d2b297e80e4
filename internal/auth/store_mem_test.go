package auth

import (
	"context"
	"sync"
	"time"

	"sisc-sesau/internal/audit"
)

// memoryStore is an in-memory Store for tests. Mutations hold the lock for
// the whole read-modify-write, mirroring the atomicity the Postgres
// repository gets from single-statement updates.
type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

func newMemoryStore(accounts ...Account) *memoryStore {
	store := &memoryStore{accounts: make(map[string]*Account)}
	for _, account := range accounts {
		copied := account
		store.accounts[account.ID] = &copied
	}
	return store
}

func (m *memoryStore) AccountByEmail(_ context.Context, email string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, account := range m.accounts {
		if account.Email == email {
			return *account, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (m *memoryStore) AccountByID(_ context.Context, id string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account, ok := m.accounts[id]; ok {
		return *account, nil
	}
	return Account{}, ErrAccountNotFound
}

func (m *memoryStore) RegisterFailedLogin(_ context.Context, id string, policy LockoutPolicy, now time.Time) (LoginState, error) {
	policy = policy.normalized()

	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return LoginState{}, ErrAccountNotFound
	}

	if account.LockedUntil != nil && now.Before(*account.LockedUntil) {
		return LoginState{FailedAttempts: account.FailedLoginAttempts, LockedUntil: account.LockedUntil}, nil
	}

	if account.FailedLoginAttempts+1 >= policy.FailureThreshold {
		until := now.Add(policy.LockDuration)
		account.FailedLoginAttempts = 0
		account.LockedUntil = &until
	} else {
		account.FailedLoginAttempts++
		account.LockedUntil = nil
	}

	return LoginState{FailedAttempts: account.FailedLoginAttempts, LockedUntil: account.LockedUntil}, nil
}

func (m *memoryStore) ResetLoginState(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.FailedLoginAttempts = 0
	account.LockedUntil = nil
	return nil
}

func (m *memoryStore) UpdatePassword(_ context.Context, id, passwordHash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	account.ForcePasswordChange = false
	account.FailedLoginAttempts = 0
	account.LockedUntil = nil
	account.UpdatedAt = now
	return nil
}

func (m *memoryStore) get(id string) Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.accounts[id]
}

// captureRecorder collects audit entries for assertions.
type captureRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (c *captureRecorder) Record(_ context.Context, entry audit.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return nil
}

func (c *captureRecorder) actions() []audit.Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	actions := make([]audit.Action, 0, len(c.entries))
	for _, entry := range c.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}
