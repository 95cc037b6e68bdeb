package domain

import (
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// API key errors.
var (
	// ErrAPIKeyNotFound indicates no key with the given id exists for the caller.
	ErrAPIKeyNotFound = errors.Wrap(errors.ErrNotFound, "api key not found")

	// ErrAPIKeyInvalid indicates the presented secret matches no stored key.
	ErrAPIKeyInvalid = errors.Wrap(errors.ErrUnauthorized, "invalid")

	// ErrAPIKeyExpired indicates the key passed its expiry.
	ErrAPIKeyExpired = errors.Wrap(errors.ErrUnauthorized, "expired")

	// ErrAPIKeyInactive indicates the key was deactivated.
	ErrAPIKeyInactive = errors.Wrap(errors.ErrUnauthorized, "inactive")

	// ErrPermissionNotAllowed indicates a requested permission is outside the key catalogue.
	ErrPermissionNotAllowed = errors.Wrap(errors.ErrInvalidInput, "permission not allowed for api keys")

	// ErrGrantExceedsHolder indicates a requested permission the key owner does not hold.
	ErrGrantExceedsHolder = errors.Wrap(errors.ErrForbidden, "api key permissions exceed user permissions")

	// ErrMaxKeysReached indicates the user already holds the maximum number of keys.
	ErrMaxKeysReached = errors.Wrap(errors.ErrConflict, "maximum number of api keys reached")

	// ErrVaultClosed indicates the vault was shut down.
	ErrVaultClosed = errors.New("credential vault closed")
)

// FailureReason maps a validation error to the short reason reported to callers.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAPIKeyExpired):
		return "expired"
	case errors.Is(err, ErrAPIKeyInactive):
		return "inactive"
	default:
		return "invalid"
	}
}
