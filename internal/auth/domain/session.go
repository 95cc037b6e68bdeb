package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Session is a logged-in user's server-side state.
type Session struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	Roles          []Role    `json:"roles"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	ExpiresAt      time.Time `json:"expiresAt"` // Expiry of the signed token bound to the session
	IPAddress      string    `json:"ipAddress"`
	UserAgent      string    `json:"userAgent"`
}

// IsIdle reports whether the session went unused for at least timeout.
func (s *Session) IsIdle(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivityAt) >= timeout
}

// Clone returns a copy.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Roles = slices.Clone(s.Roles)
	return &clone
}

// RequestContext describes the caller of an operation.
type RequestContext struct {
	IPAddress string
	UserAgent string
	Endpoint  string
}

// TokenPurpose distinguishes session tokens from pending-MFA tokens.
type TokenPurpose string

const (
	TokenPurposeSession TokenPurpose = "session"
	TokenPurposeMFA     TokenPurpose = "mfa"
)

// TokenClaims is what a signed token binds.
type TokenClaims struct {
	UserID    uuid.UUID
	SessionID uuid.UUID // Zero for MFA tokens
	Roles     []Role
	Purpose   TokenPurpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// LoginOutput is the result of a login. When RequiresMFA is set only MFAToken is
// populated and no session exists yet.
type LoginOutput struct {
	Token       string
	ExpiresAt   time.Time
	Session     *Session
	User        *User
	RequiresMFA bool
	MFAToken    string
}

// MFAEnrollment carries a freshly generated TOTP secret.
type MFAEnrollment struct {
	Secret string
	URL    string
}

// AuthContext is the resolved identity of an authorized request.
type AuthContext struct {
	User        *User
	Session     *Session
	Permissions []Permission
}

// APIKeyPrincipal is the identity behind a validated API key. Permissions is the key
// grant intersected with the owner's current permissions.
type APIKeyPrincipal struct {
	User        *User
	KeyID       uuid.UUID
	Permissions []Permission
}

// CleanupResult reports what Cleanup reclaimed.
type CleanupResult struct {
	SessionsRemoved int `json:"sessionsRemoved"`
	LockoutsRemoved int `json:"lockoutsRemoved"`
	LimitersRemoved int `json:"limitersRemoved"`
}
