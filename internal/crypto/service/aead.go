package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
)

// newGCM builds AES-256-GCM from a 32-byte key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

var aeadConstructors = map[cryptoDomain.Algorithm]func(key []byte) (cipher.AEAD, error){
	cryptoDomain.AESGCM:   newGCM,
	cryptoDomain.ChaCha20: chacha20poly1305.New,
}

// SealingCipher is the AEAD used for API key envelopes. Every Encrypt draws a fresh
// 12-byte nonce and the 16-byte tag travels at the end of the ciphertext. It holds no
// mutable state and may be shared between goroutines.
type SealingCipher struct {
	alg  cryptoDomain.Algorithm
	aead cipher.AEAD
}

// Algorithm reports which construction backs the cipher.
func (s *SealingCipher) Algorithm() cryptoDomain.Algorithm {
	return s.alg
}

// Encrypt seals plaintext under a random nonce, binding aad to the result.
func (s *SealingCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nil, nonce, plaintext, aad), nonce, nil
}

// Decrypt authenticates and opens ciphertext. Both nonce and aad must match Encrypt.
func (s *SealingCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != s.aead.NonceSize() {
		return nil, fmt.Errorf("%s: nonce must be %d bytes, got %d", s.alg, s.aead.NonceSize(), len(nonce))
	}
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open ciphertext: %w", s.alg, err)
	}
	return plaintext, nil
}

// CipherFactory builds SealingCipher values for the supported algorithms.
type CipherFactory struct{}

// NewAEADManager returns the default AEADManager.
func NewAEADManager() *CipherFactory {
	return &CipherFactory{}
}

// CreateCipher returns ErrInvalidKeySize for keys other than 32 bytes and
// ErrUnsupportedAlgorithm for unknown algorithms.
func (f *CipherFactory) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	construct, ok := aeadConstructors[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	aead, err := construct(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cipher: %w", alg, err)
	}
	return &SealingCipher{alg: alg, aead: aead}, nil
}
