package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
)

func TestUserGrants_GrantablePermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RolePermissions", func(t *testing.T) {
		f := newControllerFixture(t, defaultControllerConfig())
		user := f.addUser(t, "editor@zoe-solar.de", authDomain.RoleContentEditor)

		held, err := NewUserGrants(f.users).GrantablePermissions(ctx, user.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			authDomain.PermissionStrings(authDomain.ResolvePermissions(user)),
			held,
		)
		assert.NotEmpty(t, held)
	})

	t.Run("Success_InactiveUserHoldsNothing", func(t *testing.T) {
		f := newControllerFixture(t, defaultControllerConfig())
		user := f.addUser(t, "editor@zoe-solar.de", authDomain.RoleContentEditor)
		user.IsActive = false
		require.NoError(t, f.users.Update(ctx, user))

		held, err := NewUserGrants(f.users).GrantablePermissions(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, held)
	})

	t.Run("Error_UnknownUser", func(t *testing.T) {
		f := newControllerFixture(t, defaultControllerConfig())

		_, err := NewUserGrants(f.users).GrantablePermissions(ctx, uuid.New())
		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	})
}
