// Package usecase implements the credential vault: issuing, validating, rotating and
// revoking API keys whose secrets are only ever stored as AEAD envelopes.
package usecase

import (
	"context"

	"github.com/google/uuid"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
)

// APIKeyRepository persists API key records.
type APIKeyRepository interface {
	Create(ctx context.Context, key *apikeyDomain.APIKey) error
	Update(ctx context.Context, key *apikeyDomain.APIKey) error
	Get(ctx context.Context, id uuid.UUID) (*apikeyDomain.APIKey, error)
	GetByLookupHash(ctx context.Context, hash string) (*apikeyDomain.APIKey, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*apikeyDomain.APIKey, error)
	ListAll(ctx context.Context) ([]*apikeyDomain.APIKey, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditLogger is the part of the audit pipeline the vault reports to.
type AuditLogger interface {
	LogKeyEvent(
		ctx context.Context,
		actor auditDomain.Actor,
		action, keyID string,
		success bool,
		metadata map[string]any,
	)
	LogSystemError(ctx context.Context, component string, err error, severity auditDomain.Severity)
}

// RotationNotifier receives the replacement secret after an automatic rotation.
type RotationNotifier interface {
	KeyRotated(ctx context.Context, key *apikeyDomain.APIKey, plainKey string)
}

// GrantResolver returns the permissions userID currently holds and may delegate to a key.
type GrantResolver interface {
	GrantablePermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Vault manages the API key lifecycle.
type Vault interface {
	// CreateKey issues a key for userID. The plaintext secret is returned only here.
	// With a GrantResolver the grant must be a subset of the user's permissions.
	CreateKey(
		ctx context.Context,
		userID uuid.UUID,
		input *apikeyDomain.CreateAPIKeyInput,
	) (*apikeyDomain.CreateAPIKeyOutput, error)

	// ValidateKey resolves a presented secret to its active, unexpired key and records
	// the use. Returns ErrAPIKeyInvalid, ErrAPIKeyExpired or ErrAPIKeyInactive.
	ValidateKey(ctx context.Context, plainKey string) (*apikeyDomain.ValidateAPIKeyOutput, error)

	// RotateKey replaces the secret of a key owned by userID. The old secret stops
	// validating immediately.
	RotateKey(ctx context.Context, keyID, userID uuid.UUID) (*apikeyDomain.RotateAPIKeyOutput, error)

	// DeactivateKey disables a key and cancels its rotation timer.
	DeactivateKey(ctx context.Context, keyID, userID uuid.UUID) error

	// DeleteKey removes a key and cancels its rotation timer.
	DeleteKey(ctx context.Context, keyID, userID uuid.UUID) error

	// GetKey returns a redacted key owned by userID.
	GetKey(ctx context.Context, keyID, userID uuid.UUID) (*apikeyDomain.APIKey, error)

	// ListKeys returns the user's keys, redacted.
	ListKeys(ctx context.Context, userID uuid.UUID) ([]*apikeyDomain.APIKey, error)

	// CheckRateLimit consumes one use of permission for keyID against its hourly limit.
	CheckRateLimit(ctx context.Context, keyID uuid.UUID, permission string) error

	// Cleanup deactivates expired keys and returns how many were deactivated.
	Cleanup(ctx context.Context) (int, error)

	// Close cancels every rotation timer and zeroes the encryption key.
	Close()
}
