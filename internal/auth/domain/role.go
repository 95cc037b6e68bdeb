// Package domain defines roles, permissions, users and sessions for access control.
//
// Roles form a strict hierarchy: every role holds its own base permissions plus those of
// all roles beneath it. A user's effective permissions are the union of the permissions
// of each assigned role and any explicit per-user grants.
package domain

import (
	"slices"

	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// Role is a named position in the role hierarchy.
type Role string

// Roles ordered from least to most privileged.
const (
	RoleGuest         Role = "guest"
	RoleUser          Role = "user"
	RoleContentEditor Role = "content-editor"
	RoleAdmin         Role = "admin"
	RoleSuperAdmin    Role = "super-admin"
)

// Permission is a "domain:action" capability.
type Permission string

// Permissions known to the role registry.
const (
	PermContentRead    Permission = "content:read"
	PermContentWrite   Permission = "content:write"
	PermContentPublish Permission = "content:publish"
	PermContentDelete  Permission = "content:delete"
	PermMediaUpload    Permission = "media:upload"
	PermSEOManage      Permission = "seo:manage"
	PermNotionRead     Permission = "notion:read"
	PermNotionWrite    Permission = "notion:write"
	PermAPIRead        Permission = "api:read"
	PermAPIWrite       Permission = "api:write"
	PermAPIAdmin       Permission = "api:admin"
	PermUsersRead      Permission = "users:read"
	PermUsersManage    Permission = "users:manage"
	PermAnalyticsView  Permission = "analytics:view"
	PermAuditView      Permission = "audit:view"
	PermAuditExport    Permission = "audit:export"
	PermKeysManage     Permission = "keys:manage"
	PermSystemConfig   Permission = "system:config"
)

var roleOrder = []Role{RoleGuest, RoleUser, RoleContentEditor, RoleAdmin, RoleSuperAdmin}

// basePermissions lists only what each role adds on top of the role beneath it.
var basePermissions = map[Role][]Permission{
	RoleGuest: {PermContentRead},
	RoleUser:  {PermAPIRead, PermNotionRead},
	RoleContentEditor: {
		PermContentWrite, PermContentPublish, PermMediaUpload, PermSEOManage, PermNotionWrite,
	},
	RoleAdmin: {
		PermContentDelete, PermUsersRead, PermUsersManage, PermAnalyticsView,
		PermAuditView, PermAPIWrite, PermKeysManage,
	},
	RoleSuperAdmin: {PermAPIAdmin, PermAuditExport, PermSystemConfig},
}

// ErrUnknownRole indicates a role name outside the hierarchy.
var ErrUnknownRole = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown role")

// Rank returns the role's position in the hierarchy, or -1 for an unknown role.
func (r Role) Rank() int {
	return slices.Index(roleOrder, r)
}

// IsValid reports whether r is part of the hierarchy.
func (r Role) IsValid() bool {
	return r.Rank() >= 0
}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", apperrors.Wrapf(ErrUnknownRole, "%q", s)
	}
	return role, nil
}

// RolePermissions returns the cumulative permissions of role. Unknown roles have none.
func RolePermissions(role Role) []Permission {
	rank := role.Rank()
	if rank < 0 {
		return nil
	}
	var perms []Permission
	for _, r := range roleOrder[:rank+1] {
		perms = append(perms, basePermissions[r]...)
	}
	return perms
}

// AllPermissions returns every permission known to the registry, sorted.
func AllPermissions() []Permission {
	return sortedUnique(RolePermissions(RoleSuperAdmin))
}

// HighestRole returns the most privileged of roles, or "" when none is valid.
func HighestRole(roles []Role) Role {
	var highest Role
	for _, r := range roles {
		if r.Rank() > highest.Rank() {
			highest = r
		}
	}
	return highest
}

// PermissionStrings converts permissions to plain strings.
func PermissionStrings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func sortedUnique(perms []Permission) []Permission {
	out := slices.Clone(perms)
	slices.Sort(out)
	return slices.Compact(out)
}
