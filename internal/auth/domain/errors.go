package domain

import (
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// Access control errors.
var (
	// ErrInvalidCredentials indicates a wrong email, password or inactive account.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrLockedOut indicates the source address is temporarily blocked.
	ErrLockedOut = errors.Wrap(errors.ErrUnauthorized, "too many failed login attempts")

	// ErrInvalidToken indicates a malformed, forged or expired token.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrSessionNotFound indicates the session was revoked or never existed.
	ErrSessionNotFound = errors.Wrap(errors.ErrUnauthorized, "session not found")

	// ErrSessionExpired indicates the session was idle for longer than the timeout.
	ErrSessionExpired = errors.Wrap(errors.ErrUnauthorized, "session expired")

	// ErrNoSession is returned by RequireAuth when no valid session backs the request.
	ErrNoSession = errors.Wrap(errors.ErrUnauthorized, "authentication required")

	// ErrInsufficientPermissions is returned by RequireAuth when a permission is missing.
	ErrInsufficientPermissions = errors.Wrap(errors.ErrForbidden, "insufficient permissions")

	// ErrUserNotFound indicates no user with the given id or email exists.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserInactive indicates the user was deactivated.
	ErrUserInactive = errors.Wrap(errors.ErrUnauthorized, "user inactive")

	// ErrEmailTaken indicates another user already uses the email address.
	ErrEmailTaken = errors.Wrap(errors.ErrConflict, "email already registered")

	// ErrInvalidMFACode indicates a wrong or expired TOTP code.
	ErrInvalidMFACode = errors.Wrap(errors.ErrUnauthorized, "invalid mfa code")

	// ErrMFANotEnrolled indicates the user has no TOTP secret.
	ErrMFANotEnrolled = errors.Wrap(errors.ErrUnauthorized, "mfa not enrolled")

	// ErrGrantExceedsUser indicates an API key request for permissions the user lacks.
	ErrGrantExceedsUser = errors.Wrap(errors.ErrForbidden, "api key permissions exceed user permissions")
)

// Messages safe to show to end users.
const (
	MessageAccessDenied    = "Access denied"
	MessageInvalidLogin    = "Invalid email or password"
	MessageLockedOut       = "Too many failed attempts. Please try again later."
	MessageTooManyRequests = "Too many requests"
	MessageInternal        = "An internal error occurred"
)

// PublicError maps err to a message that does not reveal why access was refused.
// Missing sessions and missing permissions share one message.
func PublicError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrInsufficientPermissions):
		return MessageAccessDenied
	case errors.Is(err, ErrLockedOut):
		return MessageLockedOut
	case errors.Is(err, errors.ErrRateLimitExceeded):
		return MessageTooManyRequests
	case errors.Is(err, errors.ErrUnauthorized):
		return MessageInvalidLogin
	case errors.Is(err, errors.ErrForbidden):
		return MessageAccessDenied
	default:
		return MessageInternal
	}
}
