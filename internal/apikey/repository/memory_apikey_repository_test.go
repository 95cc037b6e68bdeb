package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

func newKey(userID uuid.UUID, hash string, created time.Time) *apikeyDomain.APIKey {
	return &apikeyDomain.APIKey{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      userID,
		Name:        "key-" + hash,
		LookupHash:  hash,
		Permissions: []string{"notion:read"},
		CreatedAt:   created,
		IsActive:    true,
	}
}

func TestMemoryAPIKeyRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("Success_CreateAndLookup", func(t *testing.T) {
		repo := NewMemoryAPIKeyRepository()
		key := newKey(userID, "hash-1", base)
		require.NoError(t, repo.Create(ctx, key))

		byID, err := repo.Get(ctx, key.ID)
		require.NoError(t, err)
		assert.Equal(t, key, byID)

		byHash, err := repo.GetByLookupHash(ctx, "hash-1")
		require.NoError(t, err)
		assert.Equal(t, key.ID, byHash.ID)

		byID.Permissions[0] = "api:admin"
		again, err := repo.Get(ctx, key.ID)
		require.NoError(t, err)
		assert.Equal(t, "notion:read", again.Permissions[0])
	})

	t.Run("Error_DuplicateHash", func(t *testing.T) {
		repo := NewMemoryAPIKeyRepository()
		require.NoError(t, repo.Create(ctx, newKey(userID, "same", base)))
		err := repo.Create(ctx, newKey(userID, "same", base))
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Success_UpdateReindexesHash", func(t *testing.T) {
		repo := NewMemoryAPIKeyRepository()
		key := newKey(userID, "old", base)
		require.NoError(t, repo.Create(ctx, key))

		key.LookupHash = "new"
		require.NoError(t, repo.Update(ctx, key))

		_, err := repo.GetByLookupHash(ctx, "old")
		assert.ErrorIs(t, err, apikeyDomain.ErrAPIKeyNotFound)
		found, err := repo.GetByLookupHash(ctx, "new")
		require.NoError(t, err)
		assert.Equal(t, key.ID, found.ID)
	})

	t.Run("Error_UpdateMissing", func(t *testing.T) {
		repo := NewMemoryAPIKeyRepository()
		err := repo.Update(ctx, newKey(userID, "x", base))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Success_ListByUserOrdered", func(t *testing.T) {
		repo := NewMemoryAPIKeyRepository()
		other := uuid.New()
		second := newKey(userID, "b", base.Add(time.Minute))
		first := newKey(userID, "a", base)
		require.NoError(t, repo.Create(ctx, second))
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, newKey(other, "c", base)))

		keys, err := repo.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, keys, 2)
		assert.Equal(t, first.ID, keys[0].ID)
		assert.Equal(t, second.ID, keys[1].ID)

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("Success_Delete", func(t *testing.T) {
		repo := NewMemoryAPIKeyRepository()
		key := newKey(userID, "gone", base)
		require.NoError(t, repo.Create(ctx, key))
		require.NoError(t, repo.Delete(ctx, key.ID))

		_, err := repo.Get(ctx, key.ID)
		assert.ErrorIs(t, err, apikeyDomain.ErrAPIKeyNotFound)
		_, err = repo.GetByLookupHash(ctx, "gone")
		assert.ErrorIs(t, err, apikeyDomain.ErrAPIKeyNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, key.ID), apikeyDomain.ErrAPIKeyNotFound)
	})
}
