package domain

import "time"

// LockoutState tracks failed logins from one network address.
type LockoutState struct {
	Attempts      int        `json:"attempts"`
	LastAttemptAt time.Time  `json:"lastAttemptAt"`
	LockedUntil   *time.Time `json:"lockedUntil,omitempty"`
}

// IsLocked reports whether the address is locked at now.
func (l *LockoutState) IsLocked(now time.Time) bool {
	return l.LockedUntil != nil && now.Before(*l.LockedUntil)
}

// IsStale reports whether the state can be forgotten: not locked and no failure within window.
func (l *LockoutState) IsStale(now time.Time, window time.Duration) bool {
	if l.IsLocked(now) {
		return false
	}
	if l.LockedUntil != nil {
		return true
	}
	return now.Sub(l.LastAttemptAt) >= window
}

// RecordFailure counts a failed attempt at now and locks the address for duration once
// maxAttempts is reached. An elapsed lock or an idle window starts a fresh count.
func (l *LockoutState) RecordFailure(now time.Time, maxAttempts int, duration time.Duration) {
	if l.IsStale(now, duration) {
		l.Attempts = 0
		l.LockedUntil = nil
	}
	l.Attempts++
	l.LastAttemptAt = now
	if maxAttempts > 0 && l.Attempts >= maxAttempts {
		until := now.Add(duration)
		l.LockedUntil = &until
	}
}
