package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestLockoutPolicy_Evaluate_NoRecord(t *testing.T) {
	policy := DefaultLockoutPolicy()

	state, expired := policy.Evaluate(nil, time.Now())

	assert.False(t, state.Locked)
	assert.Nil(t, state.UnlockAt)
	assert.False(t, expired)
}

func TestLockoutPolicy_Evaluate_BelowThreshold(t *testing.T) {
	policy := DefaultLockoutPolicy()
	now := time.Now()

	for attempts := 0; attempts < policy.Threshold; attempts++ {
		rec := &LoginRecord{
			AccountID:      "gamer42",
			FailedAttempts: attempts,
			LastFailedAt:   timePtr(now.Add(-1 * time.Minute)),
		}

		state, expired := policy.Evaluate(rec, now)

		assert.False(t, state.Locked, "attempts=%d", attempts)
		assert.False(t, expired, "attempts=%d", attempts)
	}
}

func TestLockoutPolicy_Evaluate_AtThresholdWithinWindow(t *testing.T) {
	policy := DefaultLockoutPolicy()
	now := time.Now()
	lastFailed := now.Add(-5 * time.Minute)

	rec := &LoginRecord{
		AccountID:      "gamer42",
		FailedAttempts: 5,
		LastFailedAt:   timePtr(lastFailed),
	}

	state, expired := policy.Evaluate(rec, now)

	assert.True(t, state.Locked)
	assert.False(t, expired)
	if assert.NotNil(t, state.UnlockAt) {
		assert.Equal(t, lastFailed.Add(policy.Duration), *state.UnlockAt)
	}
}

func TestLockoutPolicy_Evaluate_WindowElapsed(t *testing.T) {
	policy := DefaultLockoutPolicy()
	now := time.Now()

	rec := &LoginRecord{
		AccountID:      "gamer42",
		FailedAttempts: 7,
		LastFailedAt:   timePtr(now.Add(-16 * time.Minute)),
	}

	state, expired := policy.Evaluate(rec, now)

	assert.False(t, state.Locked)
	assert.True(t, expired, "stale failures should be flagged for reset")
}

func TestLockoutPolicy_Evaluate_ElapsedWithZeroFailures(t *testing.T) {
	policy := DefaultLockoutPolicy()
	now := time.Now()

	rec := &LoginRecord{
		AccountID:      "gamer42",
		FailedAttempts: 0,
		LastFailedAt:   timePtr(now.Add(-1 * time.Hour)),
	}

	_, expired := policy.Evaluate(rec, now)

	assert.False(t, expired, "nothing to reset when the counter is already zero")
}

func TestAccountLockedError_RemainingMinutes(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		unlockAt time.Time
		want     int
	}{
		{"fourteen and a half minutes rounds up", now.Add(14*time.Minute + 30*time.Second), 15},
		{"exactly ten minutes", now.Add(10 * time.Minute), 10},
		{"thirty seconds floors at one", now.Add(30 * time.Second), 1},
		{"already past floors at one", now.Add(-2 * time.Minute), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &AccountLockedError{UnlockAt: tt.unlockAt}
			assert.Equal(t, tt.want, err.RemainingMinutes(now))
		})
	}
}
