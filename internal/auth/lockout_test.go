package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockoutPolicyEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(10 * time.Minute)
	past := now.Add(-10 * time.Minute)

	tests := []struct {
		name          string
		attempts      int
		lockedUntil   *time.Time
		wantLocked    bool
		wantRemaining int
	}{
		{name: "fresh account", attempts: 0, wantRemaining: 5},
		{name: "some failures", attempts: 3, wantRemaining: 2},
		{name: "one attempt left", attempts: 4, wantRemaining: 1},
		{name: "active lock", attempts: 0, lockedUntil: &future, wantLocked: true},
		{name: "expired lock counts as active", attempts: 2, lockedUntil: &past, wantRemaining: 3},
		{name: "counter above threshold clamps to one", attempts: 7, wantRemaining: 1},
	}

	policy := DefaultLockoutPolicy()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := policy.Evaluate(tc.attempts, tc.lockedUntil, now)
			assert.Equal(t, tc.wantLocked, decision.Locked)
			if tc.wantLocked {
				assert.Equal(t, *tc.lockedUntil, decision.Until)
			} else {
				assert.Equal(t, tc.wantRemaining, decision.RemainingAttempts)
			}
		})
	}
}

func TestLockoutPolicyNormalizesZeroValues(t *testing.T) {
	policy := LockoutPolicy{}.normalized()
	assert.Equal(t, 5, policy.FailureThreshold)
	assert.Equal(t, 15*time.Minute, policy.LockDuration)
}
