package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/config"
	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
)

// LoadEncryptionKey resolves the vault encryption key from configuration.
//
// VAULT_ENCRYPTION_KEY holds base64 key material of at least 32 bytes. When KMS_KEY_URI
// is set, the decoded value is KMS ciphertext and is unwrapped through the keeper first.
// Both subkeys are derived with HKDF and the raw material is zeroed.
//
// A missing, undecodable or short key is fatal in production. Elsewhere an ephemeral
// random key is generated and a warning is logged: keys issued under it do not survive
// a restart.
func LoadEncryptionKey(
	ctx context.Context,
	cfg *config.Config,
	kmsService KMSService,
	logger *slog.Logger,
) (*cryptoDomain.EncryptionKey, error) {
	material, err := resolveKeyMaterial(ctx, cfg, kmsService)
	if err != nil {
		if cfg.IsProduction() {
			return nil, err
		}
		return ephemeralEncryptionKey(logger, err)
	}
	defer cryptoDomain.Zero(material)

	return DeriveEncryptionKey(material)
}

// resolveKeyMaterial decodes and, when configured, KMS-unwraps the vault key.
func resolveKeyMaterial(ctx context.Context, cfg *config.Config, kmsService KMSService) ([]byte, error) {
	if cfg.VaultEncryptionKey == "" {
		return nil, cryptoDomain.ErrEncryptionKeyNotSet
	}

	decoded, err := base64.StdEncoding.DecodeString(cfg.VaultEncryptionKey)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidEncryptionKeyBase64
	}

	material := decoded
	if cfg.KMSKeyURI != "" {
		keeper, err := kmsService.OpenKeeper(ctx, cfg.KMSKeyURI)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = keeper.Close()
		}()

		material, err = keeper.Decrypt(ctx, decoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt vault key with KMS: %w", err)
		}
	}

	if len(material) < cryptoDomain.KeySize {
		cryptoDomain.Zero(material)
		return nil, fmt.Errorf("%w: got %d bytes", cryptoDomain.ErrEncryptionKeyTooShort, len(material))
	}

	return material, nil
}

func ephemeralEncryptionKey(logger *slog.Logger, cause error) (*cryptoDomain.EncryptionKey, error) {
	material := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("failed to generate ephemeral vault key: %w", err)
	}
	defer cryptoDomain.Zero(material)

	if logger != nil {
		logger.Warn("vault encryption key unusable, generated an ephemeral key; API keys will not survive a restart",
			slog.Any("cause", cause),
		)
	}

	key, err := DeriveEncryptionKey(material)
	if err != nil {
		return nil, err
	}
	key.Ephemeral = true
	return key, nil
}
