package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	authDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	authRepository "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/repository"
	authService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/service"
	authUseCase "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/usecase"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/config"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/ratelimit"
)

const (
	redisKeyPrefix = "zoe:"

	// Per-minute buckets are dropped after ten idle minutes.
	authLimiterIdleTTL = 10 * time.Minute

	ephemeralSigningSecretSize = 32
)

// UserRepository returns the user repository.
func (c *Container) UserRepository() authUseCase.UserRepository {
	c.userRepositoryInit.Do(func() {
		c.userRepository = authRepository.NewMemoryUserRepository()
	})
	return c.userRepository
}

// SessionStore returns the session store selected by SESSION_STORE.
func (c *Container) SessionStore() (authUseCase.SessionStore, error) {
	var err error
	c.sessionStoreInit.Do(func() {
		c.sessionStore, err = c.initSessionStore()
		if err != nil {
			c.initErrors["sessionStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionStore"]; exists {
		return nil, storedErr
	}
	return c.sessionStore, nil
}

// LockoutStore returns the failed-login store.
func (c *Container) LockoutStore() authUseCase.LockoutStore {
	c.lockoutStoreInit.Do(func() {
		c.lockoutStore = authRepository.NewMemoryLockoutStore()
	})
	return c.lockoutStore
}

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}

// TokenService returns the session token signer.
func (c *Container) TokenService() (authService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = c.initTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// TOTPService returns the TOTP enrollment and validation service.
func (c *Container) TOTPService() authService.TOTPService {
	c.totpServiceInit.Do(func() {
		c.totpService = authService.NewTOTPService(c.config.MFAIssuer, c.Clock())
	})
	return c.totpService
}

// AccessController returns the access controller, decorated with business metrics.
func (c *Container) AccessController() (authUseCase.AccessController, error) {
	var err error
	c.accessControllerInit.Do(func() {
		c.accessController, err = c.initAccessController()
		if err != nil {
			c.initErrors["accessController"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessController"]; exists {
		return nil, storedErr
	}
	return c.accessController, nil
}

func (c *Container) initSessionStore() (authUseCase.SessionStore, error) {
	switch c.config.SessionStore {
	case config.SessionStoreRedis:
		client, err := c.RedisClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get redis client for session store: %w", err)
		}
		return authRepository.NewRedisSessionStore(client, c.config.SessionTimeout, redisKeyPrefix), nil
	case config.SessionStoreMemory, "":
		return authRepository.NewMemorySessionStore(), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", c.config.SessionStore)
	}
}

// initTokenService uses AUTH_SIGNING_SECRET. Outside production a missing secret is
// replaced by a random one, which invalidates all tokens on restart.
func (c *Container) initTokenService() (authService.TokenService, error) {
	secret := []byte(c.config.AuthSigningSecret)
	if len(secret) == 0 {
		if c.config.IsProduction() {
			return nil, fmt.Errorf("AUTH_SIGNING_SECRET is required in production")
		}
		secret = make([]byte, ephemeralSigningSecretSize)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate signing secret: %w", err)
		}
		c.Logger().Warn("AUTH_SIGNING_SECRET not set, using an ephemeral secret; sessions will not survive a restart")
	}

	tokens, err := authService.NewTokenService(secret, c.Clock())
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	return tokens, nil
}

func (c *Container) accessControllerConfig() (authUseCase.Config, error) {
	roles := make([]authDomain.Role, 0, len(c.config.MFARequiredRoles))
	for _, name := range c.config.MFARequiredRoles {
		role, err := authDomain.ParseRole(name)
		if err != nil {
			return authUseCase.Config{}, fmt.Errorf("invalid MFA_REQUIRED_ROLES: %w", err)
		}
		roles = append(roles, role)
	}

	return authUseCase.Config{
		TokenExpiration:    c.config.AuthTokenExpiration,
		SessionTimeout:     c.config.SessionTimeout,
		LockoutMaxAttempts: c.config.LockoutMaxAttempts,
		LockoutDuration:    c.config.LockoutDuration,
		MFARequiredRoles:   roles,
		MFATokenExpiration: c.config.MFATokenExpiration,
		RateLimitEndpoints: c.config.RateLimitEndpoints,
	}, nil
}

func (c *Container) initAccessController() (authUseCase.AccessController, error) {
	logger := c.Logger()

	cfg, err := c.accessControllerConfig()
	if err != nil {
		return nil, err
	}

	sessions, err := c.SessionStore()
	if err != nil {
		return nil, err
	}

	tokens, err := c.TokenService()
	if err != nil {
		return nil, err
	}

	vault, err := c.Vault()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault for access controller: %w", err)
	}

	auditor, err := c.Auditor()
	if err != nil {
		return nil, fmt.Errorf("failed to get auditor for access controller: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for access controller: %w", err)
	}

	controller := authUseCase.NewAccessController(
		cfg,
		c.UserRepository(),
		sessions,
		c.LockoutStore(),
		c.PasswordService(),
		tokens,
		c.TOTPService(),
		vault,
		ratelimit.NewStore(c.Clock(), authLimiterIdleTTL),
		c.Clock(),
		auditor,
		logger,
	)

	logger.Info("access controller ready",
		slog.String("session_store", c.config.SessionStore),
		slog.Int("rate_limited_endpoints", len(cfg.RateLimitEndpoints)),
	)

	return authUseCase.NewAccessControllerWithMetrics(controller, businessMetrics), nil
}
