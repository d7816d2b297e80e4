package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sisc-sesau/internal/audit"
)

const testPassword = "SenhaCorreta1!"

// Hashed once per test binary; bcrypt at the production cost is too slow to
// repeat in every test.
var testPasswordHash = func() string {
	hash, err := HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return hash
}()

func testAccount() Account {
	return Account{
		ID:           "7f4d2c1e-0000-7000-8000-000000000001",
		Email:        "medico@sesau.araruama.gov.br",
		Name:         "Dr. Carlos Silva",
		Role:         RoleMedico,
		PasswordHash: testPasswordHash,
	}
}

func newTestService(store Store) (*Service, *captureRecorder) {
	tokens, err := NewTokenService("test-secret-value", time.Hour)
	if err != nil {
		panic(err)
	}
	recorder := &captureRecorder{}
	return NewService(store, tokens, recorder), recorder
}

func TestLoginSuccessResetsLoginState(t *testing.T) {
	account := testAccount()
	account.FailedLoginAttempts = 4
	store := newMemoryStore(account)
	service, recorder := newTestService(store)

	result, err := service.Login(context.Background(), "MEDICO@sesau.araruama.gov.br", testPassword, audit.Meta{IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, account.ID, result.Account.ID)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 0, store.get(account.ID).FailedLoginAttempts)
	assert.Nil(t, store.get(account.ID).LockedUntil)
	assert.Equal(t, []audit.Action{audit.ActionLoginSuccess}, recorder.actions())

	session, err := service.tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, session.UserID)
	assert.Equal(t, RoleMedico, session.Role)
}

func TestLoginUnknownEmail(t *testing.T) {
	store := newMemoryStore(testAccount())
	service, recorder := newTestService(store)

	_, err := service.Login(context.Background(), "naoexiste@sesau.araruama.gov.br", testPassword, audit.Meta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, audit.ActionLoginUserNotFound, recorder.entries[0].Action)
	assert.Equal(t, audit.UnknownUserID, recorder.entries[0].UserID)
}

func TestLoginEmptyInput(t *testing.T) {
	service, recorder := newTestService(newMemoryStore(testAccount()))

	var validationErr ErrValidation
	_, err := service.Login(context.Background(), "", testPassword, audit.Meta{})
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.Login(context.Background(), "medico@sesau.araruama.gov.br", "", audit.Meta{})
	assert.ErrorAs(t, err, &validationErr)

	assert.Empty(t, recorder.entries)
}

func TestLoginWrongPasswordIncrementsAttempts(t *testing.T) {
	account := testAccount()
	store := newMemoryStore(account)
	service, recorder := newTestService(store)

	_, err := service.Login(context.Background(), account.Email, "SenhaErrada1!", audit.Meta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, store.get(account.ID).FailedLoginAttempts)
	assert.Equal(t, []audit.Action{audit.ActionLoginInvalidPassword}, recorder.actions())
}

func TestLoginFifthFailureLocksAccount(t *testing.T) {
	account := testAccount()
	store := newMemoryStore(account)
	service, recorder := newTestService(store)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := service.Login(ctx, account.Email, "SenhaErrada1!", audit.Meta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	before := time.Now().UTC()
	_, err := service.Login(ctx, account.Email, "SenhaErrada1!", audit.Meta{})

	var lockedErr ErrAccountLocked
	require.ErrorAs(t, err, &lockedErr)
	assert.WithinDuration(t, before.Add(15*time.Minute), lockedErr.Until, 5*time.Second)

	// The correct password is rejected while the lock holds, before any
	// hash comparison.
	_, err = service.Login(ctx, account.Email, testPassword, audit.Meta{})
	require.ErrorAs(t, err, &lockedErr)

	actions := recorder.actions()
	require.Len(t, actions, 6)
	assert.Equal(t, audit.ActionLoginBlockedAccount, actions[5])
}

func TestLoginAfterLockExpiry(t *testing.T) {
	account := testAccount()
	expired := time.Now().UTC().Add(-time.Minute)
	account.LockedUntil = &expired
	account.FailedLoginAttempts = 0
	store := newMemoryStore(account)
	service, _ := newTestService(store)

	result, err := service.Login(context.Background(), account.Email, testPassword, audit.Meta{})
	require.NoError(t, err)
	assert.Nil(t, store.get(account.ID).LockedUntil)
	assert.NotEmpty(t, result.Token)
}

func TestLoginLockedErrorCarriesUnlockTime(t *testing.T) {
	account := testAccount()
	until := time.Now().UTC().Add(10 * time.Minute)
	account.LockedUntil = &until
	service, recorder := newTestService(newMemoryStore(account))

	_, err := service.Login(context.Background(), account.Email, testPassword, audit.Meta{})

	var lockedErr ErrAccountLocked
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, until, lockedErr.Until)
	assert.Equal(t, []audit.Action{audit.ActionLoginBlockedAccount}, recorder.actions())
}

func TestLoginRequiresPasswordChangePassthrough(t *testing.T) {
	account := testAccount()
	account.ForcePasswordChange = true
	service, _ := newTestService(newMemoryStore(account))

	result, err := service.Login(context.Background(), account.Email, testPassword, audit.Meta{})
	require.NoError(t, err)
	assert.True(t, result.Account.ForcePasswordChange)

	session, err := service.tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.True(t, session.ForcePasswordChange)
}

func TestLoginStoreFailurePropagates(t *testing.T) {
	service, _ := newTestService(failingStore{})

	_, err := service.Login(context.Background(), "medico@sesau.araruama.gov.br", testPassword, audit.Meta{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}

type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) AccountByEmail(context.Context, string) (Account, error) {
	return Account{}, errStoreDown
}

func (failingStore) AccountByID(context.Context, string) (Account, error) {
	return Account{}, errStoreDown
}

func (failingStore) RegisterFailedLogin(context.Context, string, LockoutPolicy, time.Time) (LoginState, error) {
	return LoginState{}, errStoreDown
}

func (failingStore) ResetLoginState(context.Context, string) error { return errStoreDown }

func (failingStore) UpdatePassword(context.Context, string, string, time.Time) error {
	return errStoreDown
}
