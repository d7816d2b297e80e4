package auth

import (
	"context"
	"time"
)

// Store is the credential-store adapter. Implementations must apply every
// login-state transition as one atomic read-modify-write so concurrent
// attempts against the same account cannot lose updates.
type Store interface {
	// AccountByEmail looks up by case-normalized email. Returns
	// ErrAccountNotFound on a miss.
	AccountByEmail(ctx context.Context, email string) (Account, error)

	// AccountByID returns ErrAccountNotFound on a miss.
	AccountByID(ctx context.Context, id string) (Account, error)

	// RegisterFailedLogin records one failed attempt under the policy and
	// returns the resulting state. An account already locked at now is left
	// untouched; crossing the threshold sets the lock and resets the
	// counter; otherwise the counter increments and any expired lock is
	// cleared.
	RegisterFailedLogin(ctx context.Context, id string, policy LockoutPolicy, now time.Time) (LoginState, error)

	// ResetLoginState zeroes the failure counter and clears the lock,
	// unconditionally.
	ResetLoginState(ctx context.Context, id string) error

	// UpdatePassword sets the new hash and, in the same write, clears
	// force_password_change and resets the login state.
	UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error
}
