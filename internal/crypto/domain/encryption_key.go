package domain

import "context"

// EncryptionKey holds the two subkeys derived from the configured vault key.
//
// EnvelopeKey seals API key secrets; LookupKey computes the keyed hash used to find a
// credential without decrypting every envelope. Ephemeral is true when the key was
// generated at startup because none was configured.
type EncryptionKey struct {
	EnvelopeKey []byte
	LookupKey   []byte
	Ephemeral   bool
}

// Close zeroes the key material.
func (k *EncryptionKey) Close() {
	if k == nil {
		return
	}
	Zero(k.EnvelopeKey)
	Zero(k.LookupKey)
}

// KMSKeeper is the subset of *secrets.Keeper used to unwrap the vault key.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
