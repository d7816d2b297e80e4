package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses never reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidSession is the single outcome for every token failure:
	// malformed, bad signature, wrong algorithm, missing claims or expired.
	ErrInvalidSession = errors.New("invalid session")

	ErrAccountNotFound = errors.New("account not found")
)

// ErrAccountLocked carries the unlock time for user-facing messaging.
type ErrAccountLocked struct {
	Until time.Time
}

func (e ErrAccountLocked) Error() string {
	return "account temporarily locked"
}

// ErrValidation marks user-correctable input problems. Message is safe to
// show to the client.
type ErrValidation struct {
	Message string
}

func (e ErrValidation) Error() string {
	return e.Message
}
