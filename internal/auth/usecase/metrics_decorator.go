package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	authDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/metrics"
)

// accessControllerWithMetrics decorates AccessController with metrics instrumentation.
type accessControllerWithMetrics struct {
	next    AccessController
	metrics metrics.BusinessMetrics
}

// NewAccessControllerWithMetrics wraps an AccessController with metrics recording.
func NewAccessControllerWithMetrics(controller AccessController, m metrics.BusinessMetrics) AccessController {
	return &accessControllerWithMetrics{
		next:    controller,
		metrics: m,
	}
}

func (a *accessControllerWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, "auth", operation, status)
	a.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// Login records metrics for password logins.
func (a *accessControllerWithMetrics) Login(
	ctx context.Context,
	email, password string,
	rc authDomain.RequestContext,
) (*authDomain.LoginOutput, error) {
	start := time.Now()
	output, err := a.next.Login(ctx, email, password, rc)
	a.record(ctx, "login", start, err)
	return output, err
}

// VerifyMFA records metrics for MFA confirmation.
func (a *accessControllerWithMetrics) VerifyMFA(
	ctx context.Context,
	mfaToken, code string,
	rc authDomain.RequestContext,
) (*authDomain.LoginOutput, error) {
	start := time.Now()
	output, err := a.next.VerifyMFA(ctx, mfaToken, code, rc)
	a.record(ctx, "mfa_verify", start, err)
	return output, err
}

// EnrollMFA records metrics for MFA enrollment.
func (a *accessControllerWithMetrics) EnrollMFA(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.MFAEnrollment, error) {
	start := time.Now()
	enrollment, err := a.next.EnrollMFA(ctx, userID)
	a.record(ctx, "mfa_enroll", start, err)
	return enrollment, err
}

// LoginWithAPIKey records metrics for API key logins.
func (a *accessControllerWithMetrics) LoginWithAPIKey(
	ctx context.Context,
	apiKey string,
	rc authDomain.RequestContext,
) (*authDomain.APIKeyPrincipal, error) {
	start := time.Now()
	principal, err := a.next.LoginWithAPIKey(ctx, apiKey, rc)
	a.record(ctx, "apikey_login", start, err)
	return principal, err
}

// ValidateToken records metrics for token validation.
func (a *accessControllerWithMetrics) ValidateToken(
	ctx context.Context,
	token string,
	rc authDomain.RequestContext,
) (*authDomain.Session, error) {
	start := time.Now()
	session, err := a.next.ValidateToken(ctx, token, rc)
	a.record(ctx, "token_validate", start, err)
	return session, err
}

// Logout records metrics for logouts.
func (a *accessControllerWithMetrics) Logout(ctx context.Context, token string) error {
	start := time.Now()
	err := a.next.Logout(ctx, token)
	a.record(ctx, "logout", start, err)
	return err
}

// InvalidateUserSessions records metrics for session invalidation.
func (a *accessControllerWithMetrics) InvalidateUserSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	start := time.Now()
	removed, err := a.next.InvalidateUserSessions(ctx, userID)
	a.record(ctx, "sessions_invalidate", start, err)
	return removed, err
}

// RequireAuth records metrics for authorization checks.
func (a *accessControllerWithMetrics) RequireAuth(
	ctx context.Context,
	token string,
	rc authDomain.RequestContext,
	required ...authDomain.Permission,
) (*authDomain.AuthContext, error) {
	start := time.Now()
	authCtx, err := a.next.RequireAuth(ctx, token, rc, required...)
	a.record(ctx, "require_auth", start, err)
	return authCtx, err
}

// HasPermission delegates without recording metrics.
func (a *accessControllerWithMetrics) HasPermission(user *authDomain.User, permission authDomain.Permission) bool {
	return a.next.HasPermission(user, permission)
}

// HasAllPermissions delegates without recording metrics.
func (a *accessControllerWithMetrics) HasAllPermissions(
	user *authDomain.User,
	permissions ...authDomain.Permission,
) bool {
	return a.next.HasAllPermissions(user, permissions...)
}

// HasAnyPermission delegates without recording metrics.
func (a *accessControllerWithMetrics) HasAnyPermission(
	user *authDomain.User,
	permissions ...authDomain.Permission,
) bool {
	return a.next.HasAnyPermission(user, permissions...)
}

// EffectivePermissions delegates without recording metrics.
func (a *accessControllerWithMetrics) EffectivePermissions(user *authDomain.User) []authDomain.Permission {
	return a.next.EffectivePermissions(user)
}

// CreateUser records metrics for user creation.
func (a *accessControllerWithMetrics) CreateUser(
	ctx context.Context,
	input *authDomain.CreateUserInput,
) (*authDomain.User, error) {
	start := time.Now()
	user, err := a.next.CreateUser(ctx, input)
	a.record(ctx, "user_create", start, err)
	return user, err
}

// GetUser records metrics for user retrieval.
func (a *accessControllerWithMetrics) GetUser(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	start := time.Now()
	user, err := a.next.GetUser(ctx, userID)
	a.record(ctx, "user_get", start, err)
	return user, err
}

// SetUserActive records metrics for activation changes.
func (a *accessControllerWithMetrics) SetUserActive(
	ctx context.Context,
	userID uuid.UUID,
	active bool,
) (*authDomain.User, error) {
	start := time.Now()
	user, err := a.next.SetUserActive(ctx, userID, active)
	a.record(ctx, "user_set_active", start, err)
	return user, err
}

// CreateAPIKey records metrics for API key issuance.
func (a *accessControllerWithMetrics) CreateAPIKey(
	ctx context.Context,
	userID uuid.UUID,
	input *apikeyDomain.CreateAPIKeyInput,
) (*apikeyDomain.CreateAPIKeyOutput, error) {
	start := time.Now()
	output, err := a.next.CreateAPIKey(ctx, userID, input)
	a.record(ctx, "apikey_create", start, err)
	return output, err
}

// CheckRateLimit records metrics for endpoint rate limiting.
func (a *accessControllerWithMetrics) CheckRateLimit(ctx context.Context, endpoint, identifier string) error {
	start := time.Now()
	err := a.next.CheckRateLimit(ctx, endpoint, identifier)
	a.record(ctx, "rate_limit_check", start, err)
	return err
}

// Cleanup records metrics for state reclamation.
func (a *accessControllerWithMetrics) Cleanup(ctx context.Context) (*authDomain.CleanupResult, error) {
	start := time.Now()
	result, err := a.next.Cleanup(ctx)
	a.record(ctx, "cleanup", start, err)
	return result, err
}
