package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

func TestZero(t *testing.T) {
	t.Run("Success_ZeroesBytes", func(t *testing.T) {
		b := []byte{1, 2, 3, 4}
		Zero(b)
		assert.Equal(t, []byte{0, 0, 0, 0}, b)
	})

	t.Run("Success_NilIsNoop", func(t *testing.T) {
		assert.NotPanics(t, func() { Zero(nil) })
	})
}

func TestEncryptionKey_Close(t *testing.T) {
	key := &EncryptionKey{EnvelopeKey: []byte{9, 9}, LookupKey: []byte{7}}
	key.Close()

	assert.Equal(t, []byte{0, 0}, key.EnvelopeKey)
	assert.Equal(t, []byte{0}, key.LookupKey)

	var nilKey *EncryptionKey
	assert.NotPanics(t, func() { nilKey.Close() })
}

func TestEnvelope_Clone(t *testing.T) {
	original := Envelope{Algorithm: AESGCM, Nonce: []byte{1}, Ciphertext: []byte{2, 3}}
	clone := original.Clone()
	clone.Ciphertext[0] = 99

	assert.Equal(t, byte(2), original.Ciphertext[0])
	assert.Equal(t, original.Algorithm, clone.Algorithm)
}

func TestErrors(t *testing.T) {
	assert.ErrorIs(t, ErrDecryptionFailed, apperrors.ErrEncryption)
	assert.ErrorIs(t, ErrEncryptionFailed, apperrors.ErrEncryption)
	assert.ErrorIs(t, ErrEncryptionKeyTooShort, apperrors.ErrInvalidInput)
	assert.ErrorIs(t, ErrUnsupportedAlgorithm, apperrors.ErrInvalidInput)
}
