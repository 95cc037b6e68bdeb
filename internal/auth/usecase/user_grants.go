package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
)

// UserGrants bounds API key grants by the owner's effective permissions.
type UserGrants struct {
	users UserRepository
}

// NewUserGrants creates a UserGrants backed by users.
func NewUserGrants(users UserRepository) *UserGrants {
	return &UserGrants{users: users}
}

// GrantablePermissions returns the permissions userID holds through roles and direct grants.
// Inactive users hold none.
func (g *UserGrants) GrantablePermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := g.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return authDomain.PermissionStrings(authDomain.ResolvePermissions(user)), nil
}
