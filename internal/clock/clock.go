// Package clock abstracts wall-clock time and cancellable timers so that session expiry,
// key rotation and audit flush scheduling can be driven deterministically in tests.
package clock

import "time"

// Clock provides the current time and schedules callbacks.
type Clock interface {
	// Now returns the current time in UTC.
	Now() time.Time

	// AfterFunc waits for the duration to elapse and then calls f in its own goroutine.
	// The returned Timer can be used to cancel the call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the callback already
	// fired or the timer was already stopped.
	Stop() bool
}

type realClock struct{}

// New returns a Clock backed by the time package.
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
