// Package domain defines the API key credential record and its lifecycle inputs and outputs.
//
// A credential is a long-lived secret bound to one user. Only an AEAD envelope of the
// secret and a keyed lookup hash are stored; the plaintext is returned exactly once, by
// create or rotate.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
	appValidation "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/validation"
)

// APIKey is the stored credential record.
type APIKey struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	DisplayPrefix  string // First characters of the secret, safe to show in listings
	LookupHash     string //nolint:gosec // keyed HMAC of the secret, not the secret itself
	Envelope       cryptoDomain.Envelope
	Permissions    []string
	Metadata       map[string]string
	CreatedAt      time.Time
	ExpiresAt      *time.Time
	ValidFor       time.Duration // Expiry window renewed by required rotation, zero without expiry
	IsActive       bool
	UsageCount     int64
	LastUsedAt     *time.Time
	RotatedAt      *time.Time
	NextRotationAt *time.Time
}

// IsExpired reports whether the key has an expiry at or before now.
func (k *APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}

// HasPermission reports whether the key grant includes permission.
func (k *APIKey) HasPermission(permission string) bool {
	return slices.Contains(k.Permissions, permission)
}

// Clone returns a deep copy so stored records cannot be mutated through returned values.
func (k *APIKey) Clone() *APIKey {
	clone := *k
	clone.Envelope = k.Envelope.Clone()
	clone.Permissions = slices.Clone(k.Permissions)
	if k.Metadata != nil {
		clone.Metadata = make(map[string]string, len(k.Metadata))
		for key, value := range k.Metadata {
			clone.Metadata[key] = value
		}
	}
	clone.ExpiresAt = cloneTime(k.ExpiresAt)
	clone.LastUsedAt = cloneTime(k.LastUsedAt)
	clone.RotatedAt = cloneTime(k.RotatedAt)
	clone.NextRotationAt = cloneTime(k.NextRotationAt)
	return &clone
}

// Redacted returns a copy without the envelope and lookup hash, for listings and audit.
func (k *APIKey) Redacted() *APIKey {
	clone := k.Clone()
	clone.Envelope = cryptoDomain.Envelope{}
	clone.LookupHash = ""
	return clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// CreateAPIKeyInput contains the parameters for issuing a new key.
type CreateAPIKeyInput struct {
	Name          string
	Permissions   []string
	ExpiresInDays int // Zero means the key never expires
	Metadata      map[string]string
}

// Validate checks the input shape. Catalogue and ownership checks happen in the vault.
func (i *CreateAPIKeyInput) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.Name, validation.Required, appValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&i.Permissions, validation.Required, validation.Each(appValidation.Permission)),
		validation.Field(&i.ExpiresInDays, validation.Min(0), validation.Max(3650)),
	)
	return appValidation.WrapValidationError(err)
}

// CreateAPIKeyOutput is returned once by CreateKey.
// SECURITY: PlainKey is never stored and cannot be retrieved again.
type CreateAPIKeyOutput struct {
	PlainKey string
	Key      *APIKey
}

// RotateAPIKeyOutput carries the replacement secret.
type RotateAPIKeyOutput struct {
	PlainKey string
	Key      *APIKey
}

// ValidateAPIKeyOutput describes a successfully validated key.
type ValidateAPIKeyOutput struct {
	Key         *APIKey
	Permissions []string
}
