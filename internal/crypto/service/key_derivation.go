package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
)

// DeriveKey expands secret into a 32-byte subkey bound to info using HKDF-SHA256.
func DeriveKey(secret, info []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, info)

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// DeriveEncryptionKey derives the envelope and lookup subkeys from the vault key material.
func DeriveEncryptionKey(material []byte) (*cryptoDomain.EncryptionKey, error) {
	envelopeKey, err := DeriveKey(material, cryptoDomain.EnvelopeKeyInfo())
	if err != nil {
		return nil, err
	}

	lookupKey, err := DeriveKey(material, cryptoDomain.LookupKeyInfo())
	if err != nil {
		cryptoDomain.Zero(envelopeKey)
		return nil, err
	}

	return &cryptoDomain.EncryptionKey{EnvelopeKey: envelopeKey, LookupKey: lookupKey}, nil
}

// HMACHex returns the hex encoded HMAC-SHA256 of value under key.
func HMACHex(key, value []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(value)
	return hex.EncodeToString(mac.Sum(nil))
}
