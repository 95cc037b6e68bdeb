package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/repository"
	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
	cryptoService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/service"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/ratelimit"
)

var vaultStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type keyEvent struct {
	action   string
	keyID    string
	success  bool
	metadata map[string]any
}

// recordingAudit captures what the vault reports.
type recordingAudit struct {
	mu           sync.Mutex
	keyEvents    []keyEvent
	systemErrors []string
}

func (r *recordingAudit) LogKeyEvent(
	_ context.Context,
	_ auditDomain.Actor,
	action, keyID string,
	success bool,
	metadata map[string]any,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keyEvents = append(r.keyEvents, keyEvent{action: action, keyID: keyID, success: success, metadata: metadata})
}

func (r *recordingAudit) LogSystemError(_ context.Context, component string, _ error, _ auditDomain.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systemErrors = append(r.systemErrors, component)
}

func (r *recordingAudit) last() keyEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keyEvents[len(r.keyEvents)-1]
}

// staticGrants resolves held permissions from a fixed table.
type staticGrants map[uuid.UUID][]string

func (g staticGrants) GrantablePermissions(_ context.Context, userID uuid.UUID) ([]string, error) {
	held, ok := g[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return held, nil
}

type rotation struct {
	key      *apikeyDomain.APIKey
	plainKey string
}

type recordingNotifier struct {
	mu        sync.Mutex
	rotations []rotation
}

func (r *recordingNotifier) KeyRotated(_ context.Context, key *apikeyDomain.APIKey, plainKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rotations = append(r.rotations, rotation{key: key, plainKey: plainKey})
}

type vaultFixture struct {
	vault    Vault
	repo     *repository.MemoryAPIKeyRepository
	clock    *clock.Fake
	audit    *recordingAudit
	grants   GrantResolver
	notifier *recordingNotifier
	key      *cryptoDomain.EncryptionKey
}

func defaultVaultConfig() VaultConfig {
	return VaultConfig{
		KeyPrefix:            "zoe_",
		RotationInterval:     90 * 24 * time.Hour,
		RequireRotation:      true,
		MaxKeysPerUser:       3,
		AllowedPermissions:   []string{"api:read", "api:write", "notion:read"},
		PermissionRateLimits: map[string]int{"notion:read": 2},
		LookupMode:           LookupIndex,
	}
}

func newVaultFixture(t *testing.T, cfg VaultConfig) *vaultFixture {
	t.Helper()
	return newVaultFixtureWithGrants(t, cfg, nil)
}

func newVaultFixtureWithGrants(t *testing.T, cfg VaultConfig, grants GrantResolver) *vaultFixture {
	t.Helper()

	key, err := cryptoService.DeriveEncryptionKey(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	envelope, err := cryptoService.NewEnvelopeService(cryptoService.NewAEADManager(), key, cryptoDomain.AESGCM)
	require.NoError(t, err)

	clk := clock.NewFake(vaultStart)
	f := &vaultFixture{
		repo:     repository.NewMemoryAPIKeyRepository(),
		clock:    clk,
		audit:    &recordingAudit{},
		grants:   grants,
		notifier: &recordingNotifier{},
		key:      key,
	}
	f.vault = NewVault(
		cfg,
		f.repo,
		envelope,
		key,
		clk,
		ratelimit.NewStore(clk, time.Hour),
		f.audit,
		f.grants,
		f.notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	t.Cleanup(f.vault.Close)
	return f
}

func notionInput(expiresInDays int) *apikeyDomain.CreateAPIKeyInput {
	return &apikeyDomain.CreateAPIKeyInput{
		Name:          "Notion sync",
		Permissions:   []string{"notion:read"},
		ExpiresInDays: expiresInDays,
	}
}
