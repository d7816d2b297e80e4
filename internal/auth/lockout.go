package auth

import "time"

const (
	defaultFailureThreshold = 5
	defaultLockDuration     = 15 * time.Minute
)

// LockoutPolicy decides when repeated login failures lock an account. The
// policy itself is pure; persisting transitions is the store's job and must
// happen as a single atomic write per attempt.
type LockoutPolicy struct {
	FailureThreshold int
	LockDuration     time.Duration
}

func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		FailureThreshold: defaultFailureThreshold,
		LockDuration:     defaultLockDuration,
	}
}

func (p LockoutPolicy) normalized() LockoutPolicy {
	if p.FailureThreshold <= 0 {
		p.FailureThreshold = defaultFailureThreshold
	}
	if p.LockDuration <= 0 {
		p.LockDuration = defaultLockDuration
	}
	return p
}

// LockoutDecision is derived from an account's stored state and "now"; it is
// never persisted.
type LockoutDecision struct {
	Locked            bool
	Until             time.Time
	RemainingAttempts int
}

// Evaluate classifies the stored state. An expired lock counts as active
// with the stored attempt counter; the stale lock timestamp is corrected by
// the next attempt's write, not here.
func (p LockoutPolicy) Evaluate(failedAttempts int, lockedUntil *time.Time, now time.Time) LockoutDecision {
	p = p.normalized()

	if lockedUntil != nil && now.Before(*lockedUntil) {
		return LockoutDecision{Locked: true, Until: *lockedUntil}
	}

	remaining := p.FailureThreshold - failedAttempts
	if remaining < 1 {
		remaining = 1
	}
	return LockoutDecision{RemainingAttempts: remaining}
}
