package models

import "time"

// LoginRecord tracks failed-attempt state for one account. One row per
// account in the login_records table, mutated only by the login flow.
type LoginRecord struct {
	AccountID      string     `db:"account_id"`
	FailedAttempts int        `db:"failed_attempts"`
	LastFailedAt   *time.Time `db:"last_failed_at"`
	LastLoginAt    *time.Time `db:"last_login_at"`
}

// LockState is the ledger's answer to "may this account attempt a login".
type LockState struct {
	Locked   bool
	UnlockAt *time.Time
}

// LockoutPolicy defines when repeated failures lock an account.
type LockoutPolicy struct {
	Threshold int           // failed attempts before lockout
	Duration  time.Duration // how long the lockout lasts
}

// DefaultLockoutPolicy locks after 5 failures for 15 minutes.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		Threshold: 5,
		Duration:  15 * time.Minute,
	}
}

// Evaluate computes the lock state of a record at the given instant.
// expired reports whether the record holds stale failure state that should
// be reset (failures on the books but the window has elapsed).
func (p LockoutPolicy) Evaluate(rec *LoginRecord, now time.Time) (state LockState, expired bool) {
	if rec == nil || rec.LastFailedAt == nil {
		return LockState{}, false
	}

	unlockAt := rec.LastFailedAt.Add(p.Duration)

	if now.Before(unlockAt) {
		if rec.FailedAttempts >= p.Threshold {
			return LockState{Locked: true, UnlockAt: &unlockAt}, false
		}
		return LockState{}, false
	}

	// Window elapsed; any recorded failures are stale.
	return LockState{}, rec.FailedAttempts > 0
}
