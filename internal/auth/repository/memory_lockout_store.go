package repository

import (
	"context"
	"sync"
	"time"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
)

// MemoryLockoutStore keeps failed-login state per network address.
type MemoryLockoutStore struct {
	mu     sync.Mutex
	states map[string]domain.LockoutState
}

// NewMemoryLockoutStore creates an empty MemoryLockoutStore.
func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{states: make(map[string]domain.LockoutState)}
}

// Get returns the state for address. An unknown address has a zero state.
func (s *MemoryLockoutStore) Get(_ context.Context, address string) (domain.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copyState(s.states[address]), nil
}

// copyState detaches LockedUntil from the stored value.
func copyState(state domain.LockoutState) domain.LockoutState {
	if state.LockedUntil != nil {
		until := *state.LockedUntil
		state.LockedUntil = &until
	}
	return state
}

// RecordFailure applies one failed attempt to the stored state under the store lock.
func (s *MemoryLockoutStore) RecordFailure(
	_ context.Context,
	address string,
	now time.Time,
	maxAttempts int,
	duration time.Duration,
) (domain.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.states[address]
	state.RecordFailure(now, maxAttempts, duration)
	s.states[address] = state
	return copyState(state), nil
}

// Delete forgets address.
func (s *MemoryLockoutStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, address)
	return nil
}

// Prune forgets every address whose lock elapsed or whose failures are older than window.
func (s *MemoryLockoutStore) Prune(_ context.Context, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for address, state := range s.states {
		if state.IsStale(now, window) {
			delete(s.states, address)
			removed++
		}
	}
	return removed, nil
}
