package domain

import (
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// Cryptographic operation error definitions.
//
// Envelope failures wrap errors.ErrEncryption so that the vault can treat them as a
// non-match during validation and report them as system errors. Configuration
// failures wrap errors.ErrInvalidInput.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a derived key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrEncryptionKeyNotSet indicates VAULT_ENCRYPTION_KEY is empty.
	ErrEncryptionKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "vault encryption key not set")

	// ErrEncryptionKeyTooShort indicates the configured key material is shorter than 32 bytes.
	ErrEncryptionKeyTooShort = errors.Wrap(errors.ErrInvalidInput, "vault encryption key must be at least 32 bytes")

	// ErrInvalidEncryptionKeyBase64 indicates the configured key is not valid base64.
	ErrInvalidEncryptionKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "vault encryption key is not valid base64")

	// ErrEncryptionFailed indicates an envelope could not be sealed.
	ErrEncryptionFailed = errors.Wrap(errors.ErrEncryption, "encryption failed")

	// ErrDecryptionFailed indicates an envelope could not be opened: wrong key,
	// mismatched associated data, or tampered ciphertext. The cause is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrEncryption, "decryption failed")
)
