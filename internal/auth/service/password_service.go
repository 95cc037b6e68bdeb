package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// Hash hashes password with Argon2id.
func (s *passwordService) Hash(password string) (string, error) {
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

// Verify reports whether password matches hash.
func (s *passwordService) Verify(password string, hash string) bool {
	if hash == "" {
		return false
	}
	ok, err := s.hasher.Verify([]byte(password), hash)
	if err != nil {
		return false
	}
	return ok
}

// NewPasswordService creates a PasswordService using the Moderate Argon2id policy.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}
	return &passwordService{hasher: hasher}
}
