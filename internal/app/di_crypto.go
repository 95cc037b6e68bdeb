package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
	cryptoService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/service"
)

const auditSigningKeyInfo = "audit-signing-v1"

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KMSService returns the KMS service used to unwrap the vault encryption key.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// EncryptionKey returns the derived vault keys. Outside production an unusable
// VAULT_ENCRYPTION_KEY yields an ephemeral key instead of an error.
func (c *Container) EncryptionKey() (*cryptoDomain.EncryptionKey, error) {
	var err error
	c.encryptionKeyInit.Do(func() {
		c.encryptionKey, err = cryptoService.LoadEncryptionKey(
			context.Background(),
			c.config,
			c.KMSService(),
			c.Logger(),
		)
		if err != nil {
			c.initErrors["encryptionKey"] = fmt.Errorf("failed to load vault encryption key: %w", err)
		}
	})
	if storedErr, exists := c.initErrors["encryptionKey"]; exists {
		return nil, storedErr
	}
	return c.encryptionKey, nil
}

// EnvelopeService returns the envelope service sealing API key secrets.
func (c *Container) EnvelopeService() (cryptoService.EnvelopeService, error) {
	var err error
	c.envelopeServiceInit.Do(func() {
		c.envelopeService, err = c.initEnvelopeService()
		if err != nil {
			c.initErrors["envelopeService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeService"]; exists {
		return nil, storedErr
	}
	return c.envelopeService, nil
}

func (c *Container) initEnvelopeService() (cryptoService.EnvelopeService, error) {
	key, err := c.EncryptionKey()
	if err != nil {
		return nil, err
	}

	envelope, err := cryptoService.NewEnvelopeService(
		c.AEADManager(),
		key,
		cryptoDomain.Algorithm(c.config.VaultAlgorithm),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope service: %w", err)
	}
	return envelope, nil
}

// auditSigningSecret derives the audit HMAC secret from the vault lookup key so both
// rotate together with VAULT_ENCRYPTION_KEY.
func (c *Container) auditSigningSecret() ([]byte, error) {
	key, err := c.EncryptionKey()
	if err != nil {
		return nil, err
	}
	return cryptoService.DeriveKey(key.LookupKey, []byte(auditSigningKeyInfo))
}
