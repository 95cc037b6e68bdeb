package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

func TestAPIKey_IsExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.False(t, (&APIKey{}).IsExpired(now))
	assert.True(t, (&APIKey{ExpiresAt: &past}).IsExpired(now))
	assert.True(t, (&APIKey{ExpiresAt: &now}).IsExpired(now))
	assert.False(t, (&APIKey{ExpiresAt: &future}).IsExpired(now))
}

func TestAPIKey_Clone(t *testing.T) {
	expires := time.Now()
	key := &APIKey{
		ID:          uuid.New(),
		Permissions: []string{"notion:read"},
		Metadata:    map[string]string{"team": "content"},
		Envelope:    cryptoDomain.Envelope{Nonce: []byte{1}, Ciphertext: []byte{2}},
		ExpiresAt:   &expires,
		LookupHash:  "abc",
	}

	clone := key.Clone()
	clone.Permissions[0] = "api:admin"
	clone.Metadata["team"] = "ops"
	clone.Envelope.Nonce[0] = 9
	*clone.ExpiresAt = expires.Add(time.Hour)

	assert.Equal(t, "notion:read", key.Permissions[0])
	assert.Equal(t, "content", key.Metadata["team"])
	assert.Equal(t, byte(1), key.Envelope.Nonce[0])
	assert.Equal(t, expires, *key.ExpiresAt)

	redacted := key.Redacted()
	assert.Empty(t, redacted.LookupHash)
	assert.Nil(t, redacted.Envelope.Ciphertext)
	assert.Equal(t, key.ID, redacted.ID)
	assert.True(t, key.HasPermission("notion:read"))
	assert.False(t, key.HasPermission("api:admin"))
}

func TestCreateAPIKeyInput_Validate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		input := &CreateAPIKeyInput{Name: "Notion sync", Permissions: []string{"notion:read"}, ExpiresInDays: 30}
		assert.NoError(t, input.Validate())
	})

	t.Run("Error_MissingName", func(t *testing.T) {
		input := &CreateAPIKeyInput{Name: "  ", Permissions: []string{"notion:read"}}
		err := input.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_MalformedPermission", func(t *testing.T) {
		input := &CreateAPIKeyInput{Name: "sync", Permissions: []string{"NOTION"}}
		assert.ErrorIs(t, input.Validate(), apperrors.ErrInvalidInput)
	})

	t.Run("Error_NegativeExpiry", func(t *testing.T) {
		input := &CreateAPIKeyInput{Name: "sync", Permissions: []string{"notion:read"}, ExpiresInDays: -1}
		assert.ErrorIs(t, input.Validate(), apperrors.ErrInvalidInput)
	})
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "", FailureReason(nil))
	assert.Equal(t, "expired", FailureReason(fmt.Errorf("validate: %w", ErrAPIKeyExpired)))
	assert.Equal(t, "inactive", FailureReason(ErrAPIKeyInactive))
	assert.Equal(t, "invalid", FailureReason(ErrAPIKeyInvalid))
	assert.ErrorIs(t, ErrAPIKeyExpired, apperrors.ErrUnauthorized)
}
