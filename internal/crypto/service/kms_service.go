package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
)

// kmsSchemes are the keeper URL schemes registered by the blank imports above.
var kmsSchemes = []string{"awskms", "azurekeyvault", "base64key", "gcpkms", "hashivault"}

// KMSService opens keepers that wrap and unwrap the vault encryption key.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

type gocloudKMS struct{}

// NewKMSService returns a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return gocloudKMS{}
}

func (gocloudKMS) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	scheme, err := KMSScheme(keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper (%s): %w", scheme, err)
	}
	return keeper, nil
}

// KMSScheme returns the scheme of keyURI when a keeper driver is registered for it.
func KMSScheme(keyURI string) (string, error) {
	parsed, err := url.Parse(keyURI)
	if err != nil {
		return "", fmt.Errorf("invalid KMS key URI: %w", err)
	}
	if !slices.Contains(kmsSchemes, parsed.Scheme) {
		return "", fmt.Errorf("unsupported KMS scheme %q, expected one of %v", parsed.Scheme, kmsSchemes)
	}
	return parsed.Scheme, nil
}
