package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// TokenIssuer is the iss claim of every token.
const TokenIssuer = "zoe-solar"

const minSigningSecretLength = 32

type tokenClaims struct {
	Roles   []string `json:"roles"`
	Purpose string   `json:"purpose"`
	jwt.RegisteredClaims
}

// jwtTokenService implements TokenService with HMAC-SHA256 signed JWTs.
type jwtTokenService struct {
	secret []byte
	clock  clock.Clock
}

// NewTokenService creates a TokenService signing with secret. Token expiry is checked
// against clk.
func NewTokenService(secret []byte, clk clock.Clock) (TokenService, error) {
	if len(secret) < minSigningSecretLength {
		return nil, apperrors.Wrapf(
			apperrors.ErrInvalidInput,
			"signing secret must be at least %d bytes",
			minSigningSecretLength,
		)
	}
	return &jwtTokenService{secret: secret, clock: clk}, nil
}

// Sign encodes claims as an HS256 JWT. The session id travels as jti.
func (s *jwtTokenService) Sign(claims domain.TokenClaims) (string, error) {
	roles := make([]string, len(claims.Roles))
	for i, r := range claims.Roles {
		roles[i] = string(r)
	}

	registered := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Subject:   claims.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	}
	if claims.SessionID != uuid.Nil {
		registered.ID = claims.SessionID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Roles:            roles,
		Purpose:          string(claims.Purpose),
		RegisteredClaims: registered,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Parse verifies token and converts its claims.
func (s *jwtTokenService) Parse(token string) (*domain.TokenClaims, error) {
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(
		token,
		&parsed,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrInvalidToken, err.Error())
	}

	userID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrInvalidToken, "malformed subject")
	}
	var sessionID uuid.UUID
	if parsed.ID != "" {
		if sessionID, err = uuid.Parse(parsed.ID); err != nil {
			return nil, apperrors.Wrap(domain.ErrInvalidToken, "malformed session id")
		}
	}

	roles := make([]domain.Role, len(parsed.Roles))
	for i, r := range parsed.Roles {
		roles[i] = domain.Role(r)
	}

	claims := &domain.TokenClaims{
		UserID:    userID,
		SessionID: sessionID,
		Roles:     roles,
		Purpose:   domain.TokenPurpose(parsed.Purpose),
		ExpiresAt: parsed.ExpiresAt.Time,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	return claims, nil
}
