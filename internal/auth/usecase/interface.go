// Package usecase implements the access controller: login with lockout and optional
// TOTP confirmation, session tokens, API key login and permission checks.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	authDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create stores a new user. Returns ErrEmailTaken if the email is in use.
	Create(ctx context.Context, user *authDomain.User) error

	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, id uuid.UUID) (*authDomain.User, error)

	// GetByEmail retrieves a user by case-insensitive email. Returns ErrUserNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*authDomain.User, error)

	// Update replaces an existing user.
	Update(ctx context.Context, user *authDomain.User) error

	List(ctx context.Context) ([]*authDomain.User, error)
}

// SessionStore persists sessions.
type SessionStore interface {
	Create(ctx context.Context, session *authDomain.Session) error

	// Get retrieves a session by ID. Returns ErrSessionNotFound if not found.
	Get(ctx context.Context, id uuid.UUID) (*authDomain.Session, error)

	// Touch saves a session after activity. Returns ErrSessionNotFound if it is gone.
	Touch(ctx context.Context, session *authDomain.Session) error

	// Delete removes a session. Missing sessions are not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByUser removes all sessions of a user and returns how many were removed.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteExpired removes idle and token-expired sessions and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int, error)
}

// LockoutStore persists failed-login state per network address.
type LockoutStore interface {
	Get(ctx context.Context, address string) (authDomain.LockoutState, error)

	// RecordFailure counts one failed attempt at now and returns the resulting state.
	// Concurrent calls for the same address must all be counted.
	RecordFailure(
		ctx context.Context,
		address string,
		now time.Time,
		maxAttempts int,
		duration time.Duration,
	) (authDomain.LockoutState, error)

	Delete(ctx context.Context, address string) error
	Prune(ctx context.Context, now time.Time, window time.Duration) (int, error)
}

// KeyVault is the part of the credential vault used for API key login and issuance.
type KeyVault interface {
	CreateKey(
		ctx context.Context,
		userID uuid.UUID,
		input *apikeyDomain.CreateAPIKeyInput,
	) (*apikeyDomain.CreateAPIKeyOutput, error)
	ValidateKey(ctx context.Context, plainKey string) (*apikeyDomain.ValidateAPIKeyOutput, error)
}

// AuditLogger is the part of the audit pipeline the access controller reports to.
type AuditLogger interface {
	LogAuthentication(
		ctx context.Context,
		actor auditDomain.Actor,
		action string,
		success bool,
		metadata map[string]any,
	)
	LogAuthorization(
		ctx context.Context,
		actor auditDomain.Actor,
		resource string,
		permissions []string,
		granted bool,
	)
	LogSecurityEvent(
		ctx context.Context,
		actor auditDomain.Actor,
		action string,
		severity auditDomain.Severity,
		metadata map[string]any,
	)
	LogUserEvent(
		ctx context.Context,
		actor auditDomain.Actor,
		action, userID string,
		before, after map[string]any,
	)
}

// AccessController authenticates users and API keys and authorizes requests.
//
// Authentication and authorization failures wrap errors.ErrUnauthorized or
// errors.ErrForbidden. Use authDomain.PublicError to render them to end users.
type AccessController interface {
	// Login checks credentials from the address in rc. A locked address fails with
	// ErrLockedOut before the user store is consulted. Users whose highest role requires
	// MFA receive an MFA token and no session.
	Login(ctx context.Context, email, password string, rc authDomain.RequestContext) (*authDomain.LoginOutput, error)

	// VerifyMFA completes a login started by Login with a TOTP code.
	VerifyMFA(ctx context.Context, mfaToken, code string, rc authDomain.RequestContext) (*authDomain.LoginOutput, error)

	// EnrollMFA generates and stores a new TOTP secret for the user.
	EnrollMFA(ctx context.Context, userID uuid.UUID) (*authDomain.MFAEnrollment, error)

	// LoginWithAPIKey validates an API key. The returned permissions are the key grant
	// restricted to what the owner currently holds.
	LoginWithAPIKey(ctx context.Context, apiKey string, rc authDomain.RequestContext) (*authDomain.APIKeyPrincipal, error)

	// ValidateToken resolves a session token. Sessions idle for the session timeout are
	// deleted and reported as ErrSessionExpired; valid ones have their activity refreshed.
	ValidateToken(ctx context.Context, token string, rc authDomain.RequestContext) (*authDomain.Session, error)

	// Logout revokes the session behind token. Logging out twice is not an error.
	Logout(ctx context.Context, token string) error

	// InvalidateUserSessions revokes every session of a user.
	InvalidateUserSessions(ctx context.Context, userID uuid.UUID) (int, error)

	// RequireAuth validates token and checks that the user holds every required
	// permission. Fails with ErrNoSession or ErrInsufficientPermissions.
	RequireAuth(
		ctx context.Context,
		token string,
		rc authDomain.RequestContext,
		required ...authDomain.Permission,
	) (*authDomain.AuthContext, error)

	HasPermission(user *authDomain.User, permission authDomain.Permission) bool
	HasAllPermissions(user *authDomain.User, permissions ...authDomain.Permission) bool
	HasAnyPermission(user *authDomain.User, permissions ...authDomain.Permission) bool
	EffectivePermissions(user *authDomain.User) []authDomain.Permission

	// CreateUser validates input, hashes the password and stores an active user.
	CreateUser(ctx context.Context, input *authDomain.CreateUserInput) (*authDomain.User, error)

	// GetUser returns a user without secrets.
	GetUser(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// SetUserActive activates or deactivates a user. Deactivation revokes all sessions.
	SetUserActive(ctx context.Context, userID uuid.UUID, active bool) (*authDomain.User, error)

	// CreateAPIKey issues an API key whose permissions the user already holds.
	CreateAPIKey(
		ctx context.Context,
		userID uuid.UUID,
		input *apikeyDomain.CreateAPIKeyInput,
	) (*apikeyDomain.CreateAPIKeyOutput, error)

	// CheckRateLimit consumes one request of identifier against the endpoint's
	// per-minute limit. Endpoints without a configured limit are unlimited.
	CheckRateLimit(ctx context.Context, endpoint, identifier string) error

	// Cleanup removes expired sessions, elapsed lockouts and idle rate limiters.
	Cleanup(ctx context.Context) (*authDomain.CleanupResult, error)
}
