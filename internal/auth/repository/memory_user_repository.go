// Package repository provides the user, session and lockout stores used by access control.
//
// The in-memory stores keep one logical security state per process. RedisSessionStore
// shares sessions between instances.
package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// MemoryUserRepository stores users in memory, indexed by id and normalized email.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create stores a copy of user. The email must not be in use.
func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[user.ID]; exists {
		return apperrors.Wrap(apperrors.ErrConflict, "user id already exists")
	}
	email := domain.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return domain.ErrEmailTaken
	}

	r.byID[user.ID] = user.Clone()
	r.byEmail[email] = user.ID
	return nil
}

// Get returns a copy of the user with id.
func (r *MemoryUserRepository) Get(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user.Clone(), nil
}

// GetByEmail returns a copy of the user registered under email, compared case-insensitively.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.byID[id].Clone(), nil
}

// Update replaces the stored user, re-indexing the email when it changed.
func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}

	oldEmail := domain.NormalizeEmail(current.Email)
	newEmail := domain.NormalizeEmail(user.Email)
	if oldEmail != newEmail {
		if _, taken := r.byEmail[newEmail]; taken {
			return domain.ErrEmailTaken
		}
		delete(r.byEmail, oldEmail)
		r.byEmail[newEmail] = user.ID
	}

	r.byID[user.ID] = user.Clone()
	return nil
}

// List returns copies of all users ordered by creation time.
func (r *MemoryUserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.byID))
	for _, user := range r.byID {
		users = append(users, user.Clone())
	}
	slices.SortFunc(users, func(a, b *domain.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return users, nil
}
