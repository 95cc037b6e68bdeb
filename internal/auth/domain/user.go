package domain

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	appValidation "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/validation"
)

// User is an account that can log in and own API keys.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string //nolint:gosec // argon2id hash, not plaintext
	Roles        []Role
	Permissions  []Permission // Explicit grants on top of the roles
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
	TOTPSecret   string //nolint:gosec // base32 TOTP seed, empty when MFA is not enrolled
	Metadata     map[string]string
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	clone := *u
	clone.Roles = slices.Clone(u.Roles)
	clone.Permissions = slices.Clone(u.Permissions)
	clone.Metadata = maps.Clone(u.Metadata)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		clone.LastLoginAt = &t
	}
	return &clone
}

// Redacted returns a copy without the password hash and TOTP secret.
func (u *User) Redacted() *User {
	clone := u.Clone()
	clone.PasswordHash = ""
	clone.TOTPSecret = ""
	return clone
}

// ResolvePermissions returns the sorted effective permissions of user. A nil or
// deactivated user resolves to none.
func ResolvePermissions(user *User) []Permission {
	if user == nil || !user.IsActive {
		return []Permission{}
	}
	var perms []Permission
	for _, role := range user.Roles {
		perms = append(perms, RolePermissions(role)...)
	}
	perms = append(perms, user.Permissions...)
	return sortedUnique(perms)
}

// HasPermission reports whether user effectively holds permission.
func HasPermission(user *User, permission Permission) bool {
	return slices.Contains(ResolvePermissions(user), permission)
}

// HasAllPermissions reports whether user holds every permission. True when none are given.
func HasAllPermissions(user *User, permissions ...Permission) bool {
	effective := ResolvePermissions(user)
	for _, p := range permissions {
		if !slices.Contains(effective, p) {
			return false
		}
	}
	return true
}

// HasAnyPermission reports whether user holds at least one permission.
func HasAnyPermission(user *User, permissions ...Permission) bool {
	effective := ResolvePermissions(user)
	for _, p := range permissions {
		if slices.Contains(effective, p) {
			return true
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an email address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUserInput contains the parameters for creating a user.
type CreateUserInput struct {
	Email       string
	Password    string //nolint:gosec // plaintext only in transit to the hasher
	Roles       []Role
	Permissions []Permission
	Metadata    map[string]string
}

var passwordPolicy = appValidation.PasswordStrength{
	MinLength:      12,
	RequireUpper:   true,
	RequireLower:   true,
	RequireNumber:  true,
	RequireSpecial: true,
}

var validRole = validation.By(func(value any) error {
	role, _ := value.(Role)
	_, err := ParseRole(string(role))
	return err
})

var validPermission = validation.By(func(value any) error {
	perm, _ := value.(Permission)
	return appValidation.Permission.Validate(string(perm))
})

// Validate checks email format, password strength, roles and permission syntax.
func (i *CreateUserInput) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.Email, validation.Required, appValidation.Email),
		validation.Field(&i.Password, validation.Required, passwordPolicy),
		validation.Field(&i.Roles, validation.Required, validation.Each(validRole)),
		validation.Field(&i.Permissions, validation.Each(validPermission)),
	)
	return appValidation.WrapValidationError(err)
}
