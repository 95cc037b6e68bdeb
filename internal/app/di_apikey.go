package app

import (
	"fmt"
	"log/slog"
	"time"

	apikeyRepository "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/repository"
	apikeyUseCase "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/usecase"
	authDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	authUseCase "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/usecase"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/ratelimit"
)

// Hourly buckets stay alive for a full window after their last use.
const vaultLimiterIdleTTL = 2 * time.Hour

// APIKeyRepository returns the API key repository.
func (c *Container) APIKeyRepository() apikeyUseCase.APIKeyRepository {
	c.apiKeyRepositoryInit.Do(func() {
		c.apiKeyRepository = apikeyRepository.NewMemoryAPIKeyRepository()
	})
	return c.apiKeyRepository
}

// Vault returns the credential vault, decorated with business metrics.
func (c *Container) Vault() (apikeyUseCase.Vault, error) {
	var err error
	c.vaultInit.Do(func() {
		c.vault, err = c.initVault()
		if err != nil {
			c.initErrors["vault"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vault"]; exists {
		return nil, storedErr
	}
	return c.vault, nil
}

// vaultConfig maps configuration to the vault policy. Without an explicit allow-list
// every permission a role can hold may be granted to a key.
func (c *Container) vaultConfig() apikeyUseCase.VaultConfig {
	allowed := c.config.VaultAllowedPermissions
	if len(allowed) == 0 {
		allowed = authDomain.PermissionStrings(authDomain.AllPermissions())
	}
	return apikeyUseCase.VaultConfig{
		KeyPrefix:            c.config.VaultKeyPrefix,
		RotationInterval:     c.config.VaultRotationInterval,
		RequireRotation:      c.config.VaultRequireRotation,
		MaxKeysPerUser:       c.config.VaultMaxKeysPerUser,
		AllowedPermissions:   allowed,
		PermissionRateLimits: c.config.VaultPermissionRateLimits,
		LookupMode:           c.config.VaultLookupMode,
	}
}

func (c *Container) initVault() (apikeyUseCase.Vault, error) {
	logger := c.Logger()

	key, err := c.EncryptionKey()
	if err != nil {
		return nil, err
	}

	envelope, err := c.EnvelopeService()
	if err != nil {
		return nil, err
	}

	auditor, err := c.Auditor()
	if err != nil {
		return nil, fmt.Errorf("failed to get auditor for vault: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for vault: %w", err)
	}

	vault := apikeyUseCase.NewVault(
		c.vaultConfig(),
		c.APIKeyRepository(),
		envelope,
		key,
		c.Clock(),
		ratelimit.NewStore(c.Clock(), vaultLimiterIdleTTL),
		auditor,
		authUseCase.NewUserGrants(c.UserRepository()),
		nil,
		logger,
	)

	logger.Info("credential vault ready",
		slog.String("algorithm", c.config.VaultAlgorithm),
		slog.String("lookup_mode", c.config.VaultLookupMode),
		slog.Bool("ephemeral_key", key.Ephemeral),
	)

	return apikeyUseCase.NewVaultWithMetrics(vault, businessMetrics), nil
}
