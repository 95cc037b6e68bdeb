package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

var repoStart = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

func newTestUser(email string, createdAt time.Time) *domain.User {
	return &domain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Email:     email,
		Roles:     []domain.Role{domain.RoleUser},
		IsActive:  true,
		CreatedAt: createdAt,
		Metadata:  map[string]string{"team": "web"},
	}
}

func TestMemoryUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		user := newTestUser("editor@zoe-solar.de", repoStart)
		require.NoError(t, repo.Create(ctx, user))

		stored, err := repo.Get(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user, stored)
	})

	t.Run("Error_EmailTakenCaseInsensitive", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		require.NoError(t, repo.Create(ctx, newTestUser("editor@zoe-solar.de", repoStart)))

		err := repo.Create(ctx, newTestUser(" Editor@ZOE-Solar.de", repoStart))
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Error_DuplicateID", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		user := newTestUser("editor@zoe-solar.de", repoStart)
		require.NoError(t, repo.Create(ctx, user))

		dup := user.Clone()
		dup.Email = "other@zoe-solar.de"
		assert.ErrorIs(t, repo.Create(ctx, dup), apperrors.ErrConflict)
	})

	t.Run("Success_StoresCopy", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		user := newTestUser("editor@zoe-solar.de", repoStart)
		require.NoError(t, repo.Create(ctx, user))

		user.Roles[0] = domain.RoleSuperAdmin
		stored, err := repo.Get(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, stored.Roles[0])

		stored.Metadata["team"] = "sales"
		again, err := repo.Get(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "web", again.Metadata["team"])
	})
}

func TestMemoryUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	user := newTestUser("editor@zoe-solar.de", repoStart)
	require.NoError(t, repo.Create(ctx, user))

	t.Run("Success_Normalized", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "EDITOR@zoe-solar.de ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@zoe-solar.de")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestMemoryUserRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReindexesEmail", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		user := newTestUser("editor@zoe-solar.de", repoStart)
		require.NoError(t, repo.Create(ctx, user))

		user.Email = "lead@zoe-solar.de"
		user.IsActive = false
		require.NoError(t, repo.Update(ctx, user))

		_, err := repo.GetByEmail(ctx, "editor@zoe-solar.de")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		found, err := repo.GetByEmail(ctx, "lead@zoe-solar.de")
		require.NoError(t, err)
		assert.False(t, found.IsActive)
	})

	t.Run("Error_EmailTaken", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		first := newTestUser("editor@zoe-solar.de", repoStart)
		second := newTestUser("lead@zoe-solar.de", repoStart)
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		second.Email = "Editor@zoe-solar.de"
		assert.ErrorIs(t, repo.Update(ctx, second), domain.ErrEmailTaken)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		err := repo.Update(ctx, newTestUser("editor@zoe-solar.de", repoStart))
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestMemoryUserRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	later := newTestUser("b@zoe-solar.de", repoStart.Add(time.Hour))
	earlier := newTestUser("a@zoe-solar.de", repoStart)
	require.NoError(t, repo.Create(ctx, later))
	require.NoError(t, repo.Create(ctx, earlier))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, earlier.ID, users[0].ID)
	assert.Equal(t, later.ID, users[1].ID)
}
