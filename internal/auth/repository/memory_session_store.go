package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// MemorySessionStore keeps sessions in a process-local map.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uuid.UUID]*domain.Session)}
}

// Create stores a new session.
func (s *MemorySessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return apperrors.Wrap(apperrors.ErrConflict, "session id already exists")
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Get returns a copy of the session with id.
func (s *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Touch replaces a stored session after activity.
func (s *MemorySessionStore) Touch(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// DeleteByUser removes every session of userID and returns how many were removed.
func (s *MemorySessionStore) DeleteByUser(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// DeleteExpired removes sessions idle for at least idleTimeout or whose token expired.
func (s *MemorySessionStore) DeleteExpired(_ context.Context, now time.Time, idleTimeout time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.IsIdle(now, idleTimeout) || !now.Before(session.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
