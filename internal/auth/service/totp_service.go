package service

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// TOTP parameters shared by enrollment and validation. They match common authenticator apps.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

type totpService struct {
	issuer string
	clock  clock.Clock
}

// NewTOTPService creates a TOTPService labelling enrollments with issuer.
func NewTOTPService(issuer string, clk clock.Clock) TOTPService {
	return &totpService{issuer: issuer, clock: clk}
}

// Enroll generates a secret and its otpauth:// URL.
func (s *totpService) Enroll(accountName string) (*domain.MFAEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName,
		Period:      totpOpts.Period,
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate totp secret")
	}
	return &domain.MFAEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Validate checks code against secret at the clock's current time.
func (s *totpService) Validate(code string, secret string) bool {
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, s.clock.Now(), totpOpts)
	if err != nil {
		return false
	}
	return ok
}
