package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
	cryptoService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/service"
)

// RunCreateEncryptionKey generates a 32-byte vault encryption key and prints it as
// environment variables. When kmsKeyURI is set the key is wrapped by the KMS keeper
// first. Key material is zeroed after encoding.
//
// For local development use kmsProvider="localsecrets" with kmsKeyURI="base64key://...".
func RunCreateEncryptionKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsProvider, kmsKeyURI string,
) error {
	if (kmsProvider == "") != (kmsKeyURI == "") {
		return fmt.Errorf("--kms-provider and --kms-key-uri must be set together")
	}

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	encoded := key
	if kmsKeyURI != "" {
		keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()

		encoded, err = keeper.Encrypt(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to encrypt encryption key with KMS: %w", err)
		}
	}

	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "# KMS Provider: %s\n", kmsProvider)
	} else {
		_, _ = fmt.Fprintln(writer, "# Plaintext key: wrap it with --kms-key-uri before using it in production")
	}
	_, _ = fmt.Fprintf(writer, "VAULT_ENCRYPTION_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(encoded))
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}

	logger.Info("encryption key generated", slog.Bool("kms", kmsKeyURI != ""))
	return nil
}
