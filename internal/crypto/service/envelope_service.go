package service

import (
	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
)

// envelopeService seals with one configured algorithm and opens envelopes of any
// supported algorithm, so that changing VAULT_ALGORITHM keeps older keys valid.
type envelopeService struct {
	algorithm cryptoDomain.Algorithm
	ciphers   map[cryptoDomain.Algorithm]AEAD
	lookupKey []byte
}

// NewEnvelopeService builds an EnvelopeService from the derived vault key.
func NewEnvelopeService(
	aeadManager AEADManager,
	key *cryptoDomain.EncryptionKey,
	algorithm cryptoDomain.Algorithm,
) (EnvelopeService, error) {
	ciphers := make(map[cryptoDomain.Algorithm]AEAD, 2)
	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		aead, err := aeadManager.CreateCipher(key.EnvelopeKey, alg)
		if err != nil {
			return nil, err
		}
		ciphers[alg] = aead
	}

	if _, ok := ciphers[algorithm]; !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	return &envelopeService{
		algorithm: algorithm,
		ciphers:   ciphers,
		lookupKey: key.LookupKey,
	}, nil
}

// Seal encrypts plaintext bound to aad.
func (e *envelopeService) Seal(plaintext, aad []byte) (*cryptoDomain.Envelope, error) {
	ciphertext, nonce, err := e.ciphers[e.algorithm].Encrypt(plaintext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrEncryptionFailed
	}
	return &cryptoDomain.Envelope{
		Algorithm:  e.algorithm,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// Open decrypts an envelope sealed by any supported algorithm.
func (e *envelopeService) Open(envelope *cryptoDomain.Envelope, aad []byte) ([]byte, error) {
	if envelope == nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	aead, ok := e.ciphers[envelope.Algorithm]
	if !ok {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	plaintext, err := aead.Decrypt(envelope.Ciphertext, envelope.Nonce, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// Fingerprint returns the keyed lookup hash of value.
func (e *envelopeService) Fingerprint(value []byte) string {
	return HMACHex(e.lookupKey, value)
}
