// Package repository provides API key persistence.
package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// MemoryAPIKeyRepository keeps API keys in process memory, indexed by id and lookup hash.
// Records are copied on the way in and out.
type MemoryAPIKeyRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*apikeyDomain.APIKey
	byHash map[string]uuid.UUID
}

// NewMemoryAPIKeyRepository creates an empty repository.
func NewMemoryAPIKeyRepository() *MemoryAPIKeyRepository {
	return &MemoryAPIKeyRepository{
		byID:   make(map[uuid.UUID]*apikeyDomain.APIKey),
		byHash: make(map[string]uuid.UUID),
	}
}

// Create stores a new key. Duplicate ids or lookup hashes are rejected.
func (r *MemoryAPIKeyRepository) Create(_ context.Context, key *apikeyDomain.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[key.ID]; ok {
		return apperrors.Wrapf(apperrors.ErrConflict, "api key %s already exists", key.ID)
	}
	if _, ok := r.byHash[key.LookupHash]; ok {
		return apperrors.Wrap(apperrors.ErrConflict, "api key lookup hash already exists")
	}
	r.byID[key.ID] = key.Clone()
	r.byHash[key.LookupHash] = key.ID
	return nil
}

// Update replaces a stored key and re-indexes its lookup hash.
func (r *MemoryAPIKeyRepository) Update(_ context.Context, key *apikeyDomain.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[key.ID]
	if !ok {
		return apikeyDomain.ErrAPIKeyNotFound
	}
	if current.LookupHash != key.LookupHash {
		if owner, taken := r.byHash[key.LookupHash]; taken && owner != key.ID {
			return apperrors.Wrap(apperrors.ErrConflict, "api key lookup hash already exists")
		}
		delete(r.byHash, current.LookupHash)
		r.byHash[key.LookupHash] = key.ID
	}
	r.byID[key.ID] = key.Clone()
	return nil
}

// Get returns the key with id.
func (r *MemoryAPIKeyRepository) Get(_ context.Context, id uuid.UUID) (*apikeyDomain.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.byID[id]
	if !ok {
		return nil, apikeyDomain.ErrAPIKeyNotFound
	}
	return key.Clone(), nil
}

// GetByLookupHash returns the key indexed under hash.
func (r *MemoryAPIKeyRepository) GetByLookupHash(_ context.Context, hash string) (*apikeyDomain.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[hash]
	if !ok {
		return nil, apikeyDomain.ErrAPIKeyNotFound
	}
	return r.byID[id].Clone(), nil
}

// ListByUser returns the user's keys ordered by creation time.
func (r *MemoryAPIKeyRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*apikeyDomain.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]*apikeyDomain.APIKey, 0)
	for _, key := range r.byID {
		if key.UserID == userID {
			keys = append(keys, key.Clone())
		}
	}
	sortByCreation(keys)
	return keys, nil
}

// ListAll returns every key ordered by creation time.
func (r *MemoryAPIKeyRepository) ListAll(_ context.Context) ([]*apikeyDomain.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]*apikeyDomain.APIKey, 0, len(r.byID))
	for _, key := range r.byID {
		keys = append(keys, key.Clone())
	}
	sortByCreation(keys)
	return keys, nil
}

// Delete removes the key with id.
func (r *MemoryAPIKeyRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.byID[id]
	if !ok {
		return apikeyDomain.ErrAPIKeyNotFound
	}
	delete(r.byHash, key.LookupHash)
	delete(r.byID, id)
	return nil
}

func sortByCreation(keys []*apikeyDomain.APIKey) {
	slices.SortFunc(keys, func(a, b *apikeyDomain.APIKey) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
}
