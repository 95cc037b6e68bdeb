// Package service provides the credential primitives behind access control: password
// hashing, signed session tokens and TOTP second factors.
package service

import "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	// Hash returns an encoded Argon2id hash of password.
	Hash(password string) (string, error)

	// Verify compares password against hash in constant time. Malformed hashes never match.
	Verify(password string, hash string) bool
}

// TokenService signs and parses bearer tokens.
type TokenService interface {
	// Sign encodes claims into a signed token.
	Sign(claims domain.TokenClaims) (string, error)

	// Parse verifies the signature and expiry of token and returns its claims.
	// Any failure is reported as domain.ErrInvalidToken.
	Parse(token string) (*domain.TokenClaims, error)
}

// TOTPService enrolls and checks time-based one-time passwords.
type TOTPService interface {
	// Enroll generates a new secret for accountName.
	Enroll(accountName string) (*domain.MFAEnrollment, error)

	// Validate reports whether code is valid for secret at the current time, allowing
	// one period of clock skew.
	Validate(code string, secret string) bool
}
