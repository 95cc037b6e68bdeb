package domain

// Algorithm represents the AEAD algorithm used to seal API key envelopes.
//
// Both algorithms use a 256-bit key, a 12-byte random nonce and a 16-byte
// authentication tag appended to the ciphertext:
//   - AESGCM is the default and is hardware accelerated on AES-NI capable CPUs
//   - ChaCha20 is preferable on hosts without AES acceleration
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the required length in bytes of every derived AEAD and lookup key.
const KeySize = 32

// HKDF info labels. Changing either label invalidates every stored envelope or lookup hash.
const (
	envelopeKeyInfo = "apikey-envelope-v1"
	lookupKeyInfo   = "apikey-lookup-v1"
)

// EnvelopeKeyInfo returns the HKDF info label for the envelope encryption key.
func EnvelopeKeyInfo() []byte { return []byte(envelopeKeyInfo) }

// LookupKeyInfo returns the HKDF info label for the keyed lookup hash.
func LookupKeyInfo() []byte { return []byte(lookupKeyInfo) }
