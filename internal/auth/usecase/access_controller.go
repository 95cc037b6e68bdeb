package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	authDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	authService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/service"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/ratelimit"
)

// unknownAddress is the lockout key for requests without a network address.
const unknownAddress = "unknown"

// Config holds the access control policy.
type Config struct {
	TokenExpiration    time.Duration
	SessionTimeout     time.Duration
	LockoutMaxAttempts int
	LockoutDuration    time.Duration
	MFARequiredRoles   []authDomain.Role
	MFATokenExpiration time.Duration
	RateLimitEndpoints map[string]int // Requests per minute, exact path or "prefix*"
}

type accessController struct {
	cfg       Config
	users     UserRepository
	sessions  SessionStore
	lockouts  LockoutStore
	passwords authService.PasswordService
	tokens    authService.TokenService
	totp      authService.TOTPService
	vault     KeyVault
	limiter   *ratelimit.Store
	clock     clock.Clock
	audit     AuditLogger
	logger    *slog.Logger

	decoyOnce sync.Once
	decoy     string
}

// NewAccessController creates the access controller.
func NewAccessController(
	cfg Config,
	users UserRepository,
	sessions SessionStore,
	lockouts LockoutStore,
	passwords authService.PasswordService,
	tokens authService.TokenService,
	totp authService.TOTPService,
	vault KeyVault,
	limiter *ratelimit.Store,
	clk clock.Clock,
	audit AuditLogger,
	logger *slog.Logger,
) AccessController {
	return &accessController{
		cfg:       cfg,
		users:     users,
		sessions:  sessions,
		lockouts:  lockouts,
		passwords: passwords,
		tokens:    tokens,
		totp:      totp,
		vault:     vault,
		limiter:   limiter,
		clock:     clk,
		audit:     audit,
		logger:    logger,
	}
}

func (c *accessController) Login(
	ctx context.Context,
	email, password string,
	rc authDomain.RequestContext,
) (*authDomain.LoginOutput, error) {
	address := sourceAddress(rc)

	if err := c.checkLockout(ctx, address, rc, "login", map[string]any{"email": email}); err != nil {
		return nil, err
	}

	user, err := c.users.GetByEmail(ctx, email)
	if err != nil && !apperrors.Is(err, authDomain.ErrUserNotFound) {
		return nil, err
	}
	if !c.verifyPassword(user, password) || !user.IsActive {
		return nil, c.recordFailure(
			ctx, address, rc, "login",
			map[string]any{"email": email, "reason": "invalid_credentials"},
			authDomain.ErrInvalidCredentials,
		)
	}

	if err := c.lockouts.Delete(ctx, address); err != nil {
		return nil, err
	}

	if slices.Contains(c.cfg.MFARequiredRoles, authDomain.HighestRole(user.Roles)) {
		return c.issueMFAChallenge(ctx, user, rc)
	}
	return c.issueSession(ctx, user, rc, "login")
}

func (c *accessController) VerifyMFA(
	ctx context.Context,
	mfaToken, code string,
	rc authDomain.RequestContext,
) (*authDomain.LoginOutput, error) {
	claims, err := c.tokens.Parse(mfaToken)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != authDomain.TokenPurposeMFA {
		return nil, apperrors.Wrap(authDomain.ErrInvalidToken, "not an mfa token")
	}

	address := sourceAddress(rc)
	metadata := map[string]any{"userId": claims.UserID.String()}
	if err := c.checkLockout(ctx, address, rc, "login.mfa", metadata); err != nil {
		return nil, err
	}

	user, err := c.users.Get(ctx, claims.UserID)
	if apperrors.Is(err, authDomain.ErrUserNotFound) {
		return nil, authDomain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, authDomain.ErrInvalidCredentials
	}
	if user.TOTPSecret == "" {
		return nil, authDomain.ErrMFANotEnrolled
	}

	if !c.totp.Validate(code, user.TOTPSecret) {
		metadata["reason"] = "invalid_mfa_code"
		return nil, c.recordFailure(ctx, address, rc, "login.mfa", metadata, authDomain.ErrInvalidMFACode)
	}

	if err := c.lockouts.Delete(ctx, address); err != nil {
		return nil, err
	}
	return c.issueSession(ctx, user, rc, "login.mfa")
}

func (c *accessController) EnrollMFA(ctx context.Context, userID uuid.UUID) (*authDomain.MFAEnrollment, error) {
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollment, err := c.totp.Enroll(user.Email)
	if err != nil {
		return nil, err
	}

	wasEnrolled := user.TOTPSecret != ""
	user.TOTPSecret = enrollment.Secret
	if err := c.users.Update(ctx, user); err != nil {
		return nil, err
	}

	c.audit.LogUserEvent(
		ctx,
		auditDomain.Actor{UserID: user.ID.String()},
		"user.mfa_enroll",
		user.ID.String(),
		map[string]any{"mfaEnrolled": wasEnrolled},
		map[string]any{"mfaEnrolled": true},
	)
	return enrollment, nil
}

func (c *accessController) LoginWithAPIKey(
	ctx context.Context,
	apiKey string,
	rc authDomain.RequestContext,
) (*authDomain.APIKeyPrincipal, error) {
	actor := requestActor(rc)

	validated, err := c.vault.ValidateKey(ctx, apiKey)
	if err != nil {
		c.audit.LogAuthentication(ctx, actor, "login.apikey", false, map[string]any{
			"reason": apikeyDomain.FailureReason(err),
		})
		return nil, err
	}

	key := validated.Key
	actor.UserID = key.UserID.String()

	user, err := c.users.Get(ctx, key.UserID)
	if err != nil && !apperrors.Is(err, authDomain.ErrUserNotFound) {
		return nil, err
	}
	if user == nil || !user.IsActive {
		c.audit.LogAuthentication(ctx, actor, "login.apikey", false, map[string]any{
			"keyId":  key.ID.String(),
			"reason": "owner_inactive",
		})
		return nil, authDomain.ErrUserInactive
	}

	effective := authDomain.ResolvePermissions(user)
	granted := make([]authDomain.Permission, 0, len(validated.Permissions))
	for _, p := range validated.Permissions {
		if slices.Contains(effective, authDomain.Permission(p)) {
			granted = append(granted, authDomain.Permission(p))
		}
	}

	c.audit.LogAuthentication(ctx, actor, "login.apikey", true, map[string]any{"keyId": key.ID.String()})
	return &authDomain.APIKeyPrincipal{
		User:        user.Redacted(),
		KeyID:       key.ID,
		Permissions: granted,
	}, nil
}

func (c *accessController) ValidateToken(
	ctx context.Context,
	token string,
	rc authDomain.RequestContext,
) (*authDomain.Session, error) {
	claims, err := c.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != authDomain.TokenPurposeSession || claims.SessionID == uuid.Nil {
		return nil, apperrors.Wrap(authDomain.ErrInvalidToken, "not a session token")
	}

	session, err := c.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, apperrors.Wrap(authDomain.ErrInvalidToken, "session belongs to another user")
	}

	now := c.clock.Now()
	if session.IsIdle(now, c.cfg.SessionTimeout) {
		if err := c.sessions.Delete(ctx, session.ID); err != nil {
			return nil, err
		}
		return nil, authDomain.ErrSessionExpired
	}

	session.LastActivityAt = now
	if rc.IPAddress != "" {
		session.IPAddress = rc.IPAddress
	}
	if rc.UserAgent != "" {
		session.UserAgent = rc.UserAgent
	}
	if err := c.sessions.Touch(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (c *accessController) Logout(ctx context.Context, token string) error {
	claims, err := c.tokens.Parse(token)
	if err != nil {
		return err
	}
	if claims.SessionID == uuid.Nil {
		return apperrors.Wrap(authDomain.ErrInvalidToken, "not a session token")
	}

	if err := c.sessions.Delete(ctx, claims.SessionID); err != nil {
		return err
	}

	c.audit.LogAuthentication(ctx, auditDomain.Actor{
		UserID:    claims.UserID.String(),
		SessionID: claims.SessionID.String(),
	}, "logout", true, nil)
	return nil
}

func (c *accessController) InvalidateUserSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	removed, err := c.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	c.audit.LogSecurityEvent(
		ctx,
		auditDomain.Actor{UserID: userID.String()},
		"sessions.invalidate",
		auditDomain.SeverityMedium,
		map[string]any{"sessions": removed},
	)
	c.logger.Info("user sessions invalidated",
		slog.String("user_id", userID.String()),
		slog.Int("sessions", removed),
	)
	return removed, nil
}

func (c *accessController) RequireAuth(
	ctx context.Context,
	token string,
	rc authDomain.RequestContext,
	required ...authDomain.Permission,
) (*authDomain.AuthContext, error) {
	requiredNames := authDomain.PermissionStrings(required)

	session, err := c.ValidateToken(ctx, token, rc)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrUnauthorized) {
			return nil, err
		}
		c.audit.LogAuthorization(ctx, requestActor(rc), rc.Endpoint, requiredNames, false)
		return nil, fmt.Errorf("%w: %w", authDomain.ErrNoSession, err)
	}

	actor := sessionActor(session)
	user, err := c.users.Get(ctx, session.UserID)
	if err != nil && !apperrors.Is(err, authDomain.ErrUserNotFound) {
		return nil, err
	}
	if user == nil || !user.IsActive {
		c.audit.LogAuthorization(ctx, actor, rc.Endpoint, requiredNames, false)
		return nil, fmt.Errorf("%w: %w", authDomain.ErrNoSession, authDomain.ErrUserInactive)
	}

	permissions := authDomain.ResolvePermissions(user)
	for _, p := range required {
		if !slices.Contains(permissions, p) {
			c.audit.LogAuthorization(ctx, actor, rc.Endpoint, requiredNames, false)
			return nil, apperrors.Wrapf(authDomain.ErrInsufficientPermissions, "missing %s", p)
		}
	}

	c.audit.LogAuthorization(ctx, actor, rc.Endpoint, requiredNames, true)
	return &authDomain.AuthContext{
		User:        user.Redacted(),
		Session:     session,
		Permissions: permissions,
	}, nil
}

func (c *accessController) HasPermission(user *authDomain.User, permission authDomain.Permission) bool {
	return authDomain.HasPermission(user, permission)
}

func (c *accessController) HasAllPermissions(user *authDomain.User, permissions ...authDomain.Permission) bool {
	return authDomain.HasAllPermissions(user, permissions...)
}

func (c *accessController) HasAnyPermission(user *authDomain.User, permissions ...authDomain.Permission) bool {
	return authDomain.HasAnyPermission(user, permissions...)
}

func (c *accessController) EffectivePermissions(user *authDomain.User) []authDomain.Permission {
	return authDomain.ResolvePermissions(user)
}

func (c *accessController) CreateUser(
	ctx context.Context,
	input *authDomain.CreateUserInput,
) (*authDomain.User, error) {
	if input == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "user input is required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := c.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, authDomain.ErrEmailTaken
	} else if !apperrors.Is(err, authDomain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := c.passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	roles := slices.Clone(input.Roles)
	slices.Sort(roles)
	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        authDomain.NormalizeEmail(input.Email),
		PasswordHash: hash,
		Roles:        slices.Compact(roles),
		Permissions:  slices.Clone(input.Permissions),
		IsActive:     true,
		CreatedAt:    c.clock.Now(),
		Metadata:     maps.Clone(input.Metadata),
	}
	if err := c.users.Create(ctx, user); err != nil {
		return nil, err
	}

	c.audit.LogUserEvent(ctx, auditDomain.Actor{}, "user.create", user.ID.String(), nil, map[string]any{
		"email": user.Email,
		"roles": toAny(user.Roles),
	})
	return user.Redacted(), nil
}

func (c *accessController) GetUser(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Redacted(), nil
}

func (c *accessController) SetUserActive(
	ctx context.Context,
	userID uuid.UUID,
	active bool,
) (*authDomain.User, error) {
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	wasActive := user.IsActive
	user.IsActive = active
	if err := c.users.Update(ctx, user); err != nil {
		return nil, err
	}

	action := "user.activate"
	if !active {
		action = "user.deactivate"
		if _, err := c.sessions.DeleteByUser(ctx, userID); err != nil {
			return nil, err
		}
	}

	c.audit.LogUserEvent(
		ctx,
		auditDomain.Actor{},
		action,
		userID.String(),
		map[string]any{"isActive": wasActive},
		map[string]any{"isActive": active},
	)
	return user.Redacted(), nil
}

func (c *accessController) CreateAPIKey(
	ctx context.Context,
	userID uuid.UUID,
	input *apikeyDomain.CreateAPIKeyInput,
) (*apikeyDomain.CreateAPIKeyOutput, error) {
	if input == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "api key input is required")
	}

	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, authDomain.ErrUserInactive
	}

	effective := authDomain.ResolvePermissions(user)
	for _, p := range input.Permissions {
		if !slices.Contains(effective, authDomain.Permission(p)) {
			c.audit.LogAuthorization(
				ctx,
				auditDomain.Actor{UserID: userID.String()},
				"apikey.create",
				input.Permissions,
				false,
			)
			return nil, apperrors.Wrapf(authDomain.ErrGrantExceedsUser, "%s", p)
		}
	}

	return c.vault.CreateKey(ctx, userID, input)
}

func (c *accessController) CheckRateLimit(ctx context.Context, endpoint, identifier string) error {
	pattern, limit, ok := ratelimit.MatchLimit(c.cfg.RateLimitEndpoints, endpoint)
	if !ok || limit <= 0 {
		return nil
	}

	if c.limiter.Allow(pattern+"|"+identifier, ratelimit.PerMinute(limit), limit) {
		return nil
	}

	c.audit.LogSecurityEvent(ctx, auditDomain.Actor{}, "rate_limit.exceeded", auditDomain.SeverityMedium, map[string]any{
		"endpoint":   endpoint,
		"identifier": identifier,
		"limit":      limit,
	})
	return apperrors.Wrapf(apperrors.ErrRateLimitExceeded, "%s", endpoint)
}

func (c *accessController) Cleanup(ctx context.Context) (*authDomain.CleanupResult, error) {
	now := c.clock.Now()

	sessions, err := c.sessions.DeleteExpired(ctx, now, c.cfg.SessionTimeout)
	if err != nil {
		return nil, err
	}
	lockouts, err := c.lockouts.Prune(ctx, now, c.cfg.LockoutDuration)
	if err != nil {
		return nil, err
	}

	result := &authDomain.CleanupResult{
		SessionsRemoved: sessions,
		LockoutsRemoved: lockouts,
		LimitersRemoved: c.limiter.Cleanup(),
	}
	c.logger.Debug("access control cleanup",
		slog.Int("sessions", result.SessionsRemoved),
		slog.Int("lockouts", result.LockoutsRemoved),
		slog.Int("limiters", result.LimitersRemoved),
	)
	return result, nil
}

// checkLockout rejects the attempt when address is locked.
func (c *accessController) checkLockout(
	ctx context.Context,
	address string,
	rc authDomain.RequestContext,
	action string,
	metadata map[string]any,
) error {
	state, err := c.lockouts.Get(ctx, address)
	if err != nil {
		return err
	}
	if !state.IsLocked(c.clock.Now()) {
		return nil
	}

	metadata["reason"] = "locked_out"
	c.audit.LogAuthentication(ctx, requestActor(rc), action, false, metadata)
	return authDomain.ErrLockedOut
}

// verifyPassword checks password against the user's hash. Unknown users are checked
// against a throwaway hash so both paths cost one Argon2id verification.
func (c *accessController) verifyPassword(user *authDomain.User, password string) bool {
	if user == nil {
		c.passwords.Verify(password, c.decoyHash())
		return false
	}
	return c.passwords.Verify(password, user.PasswordHash)
}

func (c *accessController) decoyHash() string {
	c.decoyOnce.Do(func() {
		hash, err := c.passwords.Hash(uuid.NewString())
		if err != nil {
			c.logger.Warn("failed to prepare decoy password hash", slog.Any("error", err))
			return
		}
		c.decoy = hash
	})
	return c.decoy
}

// recordFailure counts a failed attempt from address, audits it and returns failure.
func (c *accessController) recordFailure(
	ctx context.Context,
	address string,
	rc authDomain.RequestContext,
	action string,
	metadata map[string]any,
	failure error,
) error {
	now := c.clock.Now()
	state, err := c.lockouts.RecordFailure(ctx, address, now, c.cfg.LockoutMaxAttempts, c.cfg.LockoutDuration)
	if err != nil {
		return err
	}

	actor := requestActor(rc)
	metadata["attempts"] = state.Attempts
	c.audit.LogAuthentication(ctx, actor, action, false, metadata)

	// Only the attempt that crossed the threshold reports the lockout.
	if state.IsLocked(now) && state.Attempts == c.cfg.LockoutMaxAttempts {
		c.audit.LogSecurityEvent(ctx, actor, "login.lockout", auditDomain.SeverityHigh, map[string]any{
			"attempts":    state.Attempts,
			"lockedUntil": state.LockedUntil.Format(time.RFC3339),
		})
		c.logger.Warn("address locked out after failed logins",
			slog.String("ip_address", address),
			slog.Int("attempts", state.Attempts),
			slog.Time("locked_until", *state.LockedUntil),
		)
	}
	return failure
}

func (c *accessController) issueMFAChallenge(
	ctx context.Context,
	user *authDomain.User,
	rc authDomain.RequestContext,
) (*authDomain.LoginOutput, error) {
	now := c.clock.Now()
	token, err := c.tokens.Sign(authDomain.TokenClaims{
		UserID:    user.ID,
		Roles:     user.Roles,
		Purpose:   authDomain.TokenPurposeMFA,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.cfg.MFATokenExpiration),
	})
	if err != nil {
		return nil, err
	}

	actor := requestActor(rc)
	actor.UserID = user.ID.String()
	c.audit.LogAuthentication(ctx, actor, "login.mfa_required", true, nil)

	return &authDomain.LoginOutput{
		ExpiresAt:   now.Add(c.cfg.MFATokenExpiration),
		User:        user.Redacted(),
		RequiresMFA: true,
		MFAToken:    token,
	}, nil
}

// issueSession creates a session for user and signs a token bound to it.
func (c *accessController) issueSession(
	ctx context.Context,
	user *authDomain.User,
	rc authDomain.RequestContext,
	action string,
) (*authDomain.LoginOutput, error) {
	now := c.clock.Now()
	session := &authDomain.Session{
		ID:             uuid.Must(uuid.NewV7()),
		UserID:         user.ID,
		Roles:          slices.Clone(user.Roles),
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(c.cfg.TokenExpiration),
		IPAddress:      rc.IPAddress,
		UserAgent:      rc.UserAgent,
	}

	token, err := c.tokens.Sign(authDomain.TokenClaims{
		UserID:    user.ID,
		SessionID: session.ID,
		Roles:     session.Roles,
		Purpose:   authDomain.TokenPurposeSession,
		IssuedAt:  now,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	if err := c.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	user.LastLoginAt = &now
	if err := c.users.Update(ctx, user); err != nil {
		_ = c.sessions.Delete(ctx, session.ID)
		return nil, err
	}

	c.audit.LogAuthentication(ctx, sessionActor(session), action, true, map[string]any{
		"roles": toAny(session.Roles),
	})
	return &authDomain.LoginOutput{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Session:   session.Clone(),
		User:      user.Redacted(),
	}, nil
}

func sourceAddress(rc authDomain.RequestContext) string {
	if rc.IPAddress == "" {
		return unknownAddress
	}
	return rc.IPAddress
}

func requestActor(rc authDomain.RequestContext) auditDomain.Actor {
	return auditDomain.Actor{IPAddress: rc.IPAddress, UserAgent: rc.UserAgent}
}

func sessionActor(s *authDomain.Session) auditDomain.Actor {
	return auditDomain.Actor{
		UserID:    s.UserID.String(),
		SessionID: s.ID.String(),
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
	}
}

func toAny[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
