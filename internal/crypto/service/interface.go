// Package service provides the cryptographic primitives behind the credential vault:
// AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), HKDF key derivation, keyed lookup
// hashes and KMS-backed unwrapping of the configured vault key.
package service

import (
	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// EnvelopeService seals secrets into envelopes and derives their lookup fingerprints.
type EnvelopeService interface {
	// Seal encrypts plaintext bound to aad with the configured algorithm.
	Seal(plaintext, aad []byte) (*cryptoDomain.Envelope, error)

	// Open decrypts an envelope. Any failure is reported as ErrDecryptionFailed.
	Open(envelope *cryptoDomain.Envelope, aad []byte) ([]byte, error)

	// Fingerprint returns the hex HMAC-SHA256 of value under the lookup key.
	Fingerprint(value []byte) string
}
