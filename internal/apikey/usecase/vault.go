package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
	cryptoDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/domain"
	cryptoService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/crypto/service"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/ratelimit"
)

// Lookup modes for ValidateKey.
const (
	// LookupIndex finds the candidate through the keyed lookup hash.
	LookupIndex = "index"
	// LookupScan decrypts every stored envelope until one matches.
	LookupScan = "scan"
)

const (
	secretBytes       = 32
	displaySecretSize = 6
)

// VaultConfig holds the vault policy.
type VaultConfig struct {
	KeyPrefix            string
	RotationInterval     time.Duration
	RequireRotation      bool
	MaxKeysPerUser       int
	AllowedPermissions   []string       // Empty allows any well-formed permission
	PermissionRateLimits map[string]int // Uses per hour per key
	LookupMode           string
}

type rotationTimer struct {
	timer clock.Timer
	seq   uint64
}

// vault serializes every operation touching a key's envelope under mu, so a rotation
// and a validation of the same key never interleave.
type vault struct {
	cfg      VaultConfig
	repo     APIKeyRepository
	envelope cryptoService.EnvelopeService
	key      *cryptoDomain.EncryptionKey
	clock    clock.Clock
	limiter  *ratelimit.Store
	audit    AuditLogger
	grants   GrantResolver
	notifier RotationNotifier
	logger   *slog.Logger

	mu     sync.Mutex
	timers map[uuid.UUID]rotationTimer
	seq    uint64
	closed bool
}

// NewVault creates the credential vault. grants and notifier may be nil; without grants
// only the permission catalogue bounds a key.
func NewVault(
	cfg VaultConfig,
	repo APIKeyRepository,
	envelope cryptoService.EnvelopeService,
	key *cryptoDomain.EncryptionKey,
	clk clock.Clock,
	limiter *ratelimit.Store,
	audit AuditLogger,
	grants GrantResolver,
	notifier RotationNotifier,
	logger *slog.Logger,
) Vault {
	if cfg.LookupMode == "" {
		cfg.LookupMode = LookupIndex
	}
	return &vault{
		cfg:      cfg,
		repo:     repo,
		envelope: envelope,
		key:      key,
		clock:    clk,
		limiter:  limiter,
		audit:    audit,
		grants:   grants,
		notifier: notifier,
		logger:   logger,
		timers:   make(map[uuid.UUID]rotationTimer),
	}
}

func (v *vault) CreateKey(
	ctx context.Context,
	userID uuid.UUID,
	input *apikeyDomain.CreateAPIKeyInput,
) (*apikeyDomain.CreateAPIKeyOutput, error) {
	if input == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "api key input is required")
	}
	output, err := v.createKey(ctx, userID, input)

	keyID := ""
	metadata := map[string]any{"name": input.Name}
	if err == nil {
		keyID = output.Key.ID.String()
		metadata["permissions"] = toAny(output.Key.Permissions)
	} else {
		metadata["error"] = err.Error()
	}
	v.audit.LogKeyEvent(ctx, actorFor(userID), "apikey.create", keyID, err == nil, metadata)
	return output, err
}

func (v *vault) createKey(
	ctx context.Context,
	userID uuid.UUID,
	input *apikeyDomain.CreateAPIKeyInput,
) (*apikeyDomain.CreateAPIKeyOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	for _, permission := range input.Permissions {
		if len(v.cfg.AllowedPermissions) > 0 && !slices.Contains(v.cfg.AllowedPermissions, permission) {
			return nil, apperrors.Wrapf(apikeyDomain.ErrPermissionNotAllowed, "%s", permission)
		}
	}
	if v.grants != nil {
		held, err := v.grants.GrantablePermissions(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, permission := range input.Permissions {
			if !slices.Contains(held, permission) {
				return nil, apperrors.Wrapf(apikeyDomain.ErrGrantExceedsHolder, "%s", permission)
			}
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, apikeyDomain.ErrVaultClosed
	}

	existing, err := v.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	if v.cfg.MaxKeysPerUser > 0 && len(existing) >= v.cfg.MaxKeysPerUser {
		return nil, apikeyDomain.ErrMaxKeysReached
	}

	now := v.clock.Now().UTC()
	key := &apikeyDomain.APIKey{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      userID,
		Name:        input.Name,
		Permissions: slices.Compact(slices.Sorted(slices.Values(input.Permissions))),
		Metadata:    input.Metadata,
		CreatedAt:   now,
		IsActive:    true,
	}
	if input.ExpiresInDays > 0 {
		key.ValidFor = time.Duration(input.ExpiresInDays) * 24 * time.Hour
		expiresAt := now.Add(key.ValidFor)
		key.ExpiresAt = &expiresAt
	}

	plainKey, err := v.issueSecret(key)
	if err != nil {
		return nil, err
	}
	key.NextRotationAt = v.nextRotation(key, now)

	if err := v.repo.Create(ctx, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to store api key")
	}
	v.armTimerLocked(key)

	return &apikeyDomain.CreateAPIKeyOutput{PlainKey: plainKey, Key: key.Redacted()}, nil
}

func (v *vault) ValidateKey(ctx context.Context, plainKey string) (*apikeyDomain.ValidateAPIKeyOutput, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, apikeyDomain.ErrVaultClosed
	}
	key, decryptErrs, err := v.lookupLocked(ctx, plainKey)
	if err == nil {
		err = v.recordUseLocked(ctx, key)
	}
	v.mu.Unlock()

	for _, decryptErr := range decryptErrs {
		v.audit.LogSystemError(ctx, "apikey.decrypt", decryptErr, auditDomain.SeverityHigh)
	}

	if err != nil {
		keyID := ""
		actor := auditDomain.Actor{}
		if key != nil {
			keyID = key.ID.String()
			actor = actorFor(key.UserID)
		}
		v.audit.LogKeyEvent(ctx, actor, "apikey.validate", keyID, false, map[string]any{
			"reason": apikeyDomain.FailureReason(err),
		})
		return nil, err
	}

	return &apikeyDomain.ValidateAPIKeyOutput{
		Key:         key.Redacted(),
		Permissions: slices.Clone(key.Permissions),
	}, nil
}

// lookupLocked finds the key matching plainKey. The returned key is non-nil whenever a
// stored secret matched, even if err reports it expired or inactive.
func (v *vault) lookupLocked(ctx context.Context, plainKey string) (*apikeyDomain.APIKey, []error, error) {
	var (
		key         *apikeyDomain.APIKey
		decryptErrs []error
	)

	switch v.cfg.LookupMode {
	case LookupScan:
		keys, err := v.repo.ListAll(ctx)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, "failed to list api keys")
		}
		for _, candidate := range keys {
			ok, err := v.matches(candidate, plainKey)
			if err != nil {
				decryptErrs = append(decryptErrs, apperrors.Wrapf(err, "api key %s", candidate.ID))
				continue
			}
			if ok {
				key = candidate
				break
			}
		}
	default:
		candidate, err := v.repo.GetByLookupHash(ctx, v.envelope.Fingerprint([]byte(plainKey)))
		if err != nil && !apperrors.Is(err, apikeyDomain.ErrAPIKeyNotFound) {
			return nil, nil, apperrors.Wrap(err, "failed to look up api key")
		}
		if candidate != nil {
			ok, err := v.matches(candidate, plainKey)
			if err != nil {
				decryptErrs = append(decryptErrs, apperrors.Wrapf(err, "api key %s", candidate.ID))
			} else if ok {
				key = candidate
			}
		}
	}

	if key == nil {
		return nil, decryptErrs, apikeyDomain.ErrAPIKeyInvalid
	}
	if key.IsExpired(v.clock.Now()) {
		return key, decryptErrs, apikeyDomain.ErrAPIKeyExpired
	}
	if !key.IsActive {
		return key, decryptErrs, apikeyDomain.ErrAPIKeyInactive
	}
	return key, decryptErrs, nil
}

// matches opens the envelope bound to the key id and compares in constant time.
func (v *vault) matches(key *apikeyDomain.APIKey, plainKey string) (bool, error) {
	plaintext, err := v.envelope.Open(&key.Envelope, key.ID[:])
	if err != nil {
		return false, err
	}
	defer cryptoDomain.Zero(plaintext)
	return subtle.ConstantTimeCompare(plaintext, []byte(plainKey)) == 1, nil
}

func (v *vault) recordUseLocked(ctx context.Context, key *apikeyDomain.APIKey) error {
	now := v.clock.Now().UTC()
	key.UsageCount++
	key.LastUsedAt = &now
	if err := v.repo.Update(ctx, key); err != nil {
		return apperrors.Wrap(err, "failed to record api key usage")
	}
	return nil
}

func (v *vault) RotateKey(ctx context.Context, keyID, userID uuid.UUID) (*apikeyDomain.RotateAPIKeyOutput, error) {
	v.mu.Lock()
	output, err := v.rotateOwnedLocked(ctx, keyID, userID)
	v.mu.Unlock()

	v.auditResult(ctx, userID, "apikey.rotate", keyID, err, map[string]any{"trigger": "manual"})
	return output, err
}

func (v *vault) rotateOwnedLocked(
	ctx context.Context,
	keyID, userID uuid.UUID,
) (*apikeyDomain.RotateAPIKeyOutput, error) {
	key, err := v.ownedLocked(ctx, keyID, userID)
	if err != nil {
		return nil, err
	}
	if !key.IsActive {
		return nil, apikeyDomain.ErrAPIKeyInactive
	}
	if key.IsExpired(v.clock.Now()) {
		return nil, apikeyDomain.ErrAPIKeyExpired
	}

	plainKey, err := v.rotateLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	return &apikeyDomain.RotateAPIKeyOutput{PlainKey: plainKey, Key: key.Redacted()}, nil
}

// rotateLocked replaces the secret in place and re-arms the rotation timer. Id, grant
// and expiry are preserved; usage is reset.
func (v *vault) rotateLocked(ctx context.Context, key *apikeyDomain.APIKey) (string, error) {
	now := v.clock.Now().UTC()
	plainKey, err := v.issueSecret(key)
	if err != nil {
		return "", err
	}
	key.UsageCount = 0
	key.LastUsedAt = nil
	key.RotatedAt = &now
	key.NextRotationAt = v.nextRotation(key, now)

	if err := v.repo.Update(ctx, key); err != nil {
		return "", apperrors.Wrap(err, "failed to store rotated api key")
	}
	v.armTimerLocked(key)
	return plainKey, nil
}

// autoRotate runs on the rotation timer. Inactive, deleted or superseded keys are skipped.
// An expired key is rotated only when rotation is required, and its expiry window starts over.
func (v *vault) autoRotate(keyID uuid.UUID, seq uint64) {
	ctx := context.Background()

	v.mu.Lock()
	if v.closed || v.timers[keyID].seq != seq {
		v.mu.Unlock()
		return
	}
	delete(v.timers, keyID)

	trigger := "schedule"
	key, err := v.repo.Get(ctx, keyID)
	if err == nil && key.IsActive && key.IsExpired(v.clock.Now()) {
		if !v.cfg.RequireRotation || key.ValidFor <= 0 {
			err = apikeyDomain.ErrAPIKeyExpired
		} else {
			expiresAt := v.clock.Now().UTC().Add(key.ValidFor)
			key.ExpiresAt = &expiresAt
			trigger = "expiry"
		}
	}
	if err != nil || !key.IsActive {
		v.mu.Unlock()
		v.logger.Debug("skipping scheduled api key rotation", slog.String("key_id", keyID.String()))
		return
	}
	plainKey, err := v.rotateLocked(ctx, key)
	v.mu.Unlock()

	if err != nil {
		v.audit.LogSystemError(ctx, "apikey.auto_rotate", err, auditDomain.SeverityHigh)
		return
	}
	v.audit.LogKeyEvent(ctx, actorFor(key.UserID), "apikey.rotate", keyID.String(), true, map[string]any{
		"trigger": trigger,
	})
	v.logger.Info("api key rotated on schedule",
		slog.String("key_id", keyID.String()),
		slog.String("trigger", trigger),
	)
	if v.notifier != nil {
		v.notifier.KeyRotated(ctx, key.Redacted(), plainKey)
	}
}

func (v *vault) DeactivateKey(ctx context.Context, keyID, userID uuid.UUID) error {
	v.mu.Lock()
	err := v.deactivateOwnedLocked(ctx, keyID, userID)
	v.mu.Unlock()

	v.auditResult(ctx, userID, "apikey.deactivate", keyID, err, nil)
	return err
}

func (v *vault) deactivateOwnedLocked(ctx context.Context, keyID, userID uuid.UUID) error {
	key, err := v.ownedLocked(ctx, keyID, userID)
	if err != nil {
		return err
	}
	return v.deactivateLocked(ctx, key)
}

func (v *vault) deactivateLocked(ctx context.Context, key *apikeyDomain.APIKey) error {
	key.IsActive = false
	key.NextRotationAt = nil
	if err := v.repo.Update(ctx, key); err != nil {
		return apperrors.Wrap(err, "failed to deactivate api key")
	}
	v.stopTimerLocked(key.ID)
	return nil
}

func (v *vault) DeleteKey(ctx context.Context, keyID, userID uuid.UUID) error {
	v.mu.Lock()
	err := v.deleteOwnedLocked(ctx, keyID, userID)
	v.mu.Unlock()

	v.auditResult(ctx, userID, "apikey.delete", keyID, err, nil)
	return err
}

func (v *vault) deleteOwnedLocked(ctx context.Context, keyID, userID uuid.UUID) error {
	if _, err := v.ownedLocked(ctx, keyID, userID); err != nil {
		return err
	}
	if err := v.repo.Delete(ctx, keyID); err != nil {
		return apperrors.Wrap(err, "failed to delete api key")
	}
	v.stopTimerLocked(keyID)
	return nil
}

func (v *vault) GetKey(ctx context.Context, keyID, userID uuid.UUID) (*apikeyDomain.APIKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key, err := v.ownedLocked(ctx, keyID, userID)
	if err != nil {
		return nil, err
	}
	return key.Redacted(), nil
}

func (v *vault) ListKeys(ctx context.Context, userID uuid.UUID) ([]*apikeyDomain.APIKey, error) {
	keys, err := v.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	for i, key := range keys {
		keys[i] = key.Redacted()
	}
	return keys, nil
}

func (v *vault) CheckRateLimit(ctx context.Context, keyID uuid.UUID, permission string) error {
	_, limit, ok := ratelimit.MatchLimit(v.cfg.PermissionRateLimits, permission)
	if !ok || limit <= 0 {
		return nil
	}
	if v.limiter.Allow(keyID.String()+"|"+permission, ratelimit.PerHour(limit), limit) {
		return nil
	}

	v.audit.LogKeyEvent(ctx, auditDomain.Actor{}, "apikey.rate_limited", keyID.String(), false, map[string]any{
		"permission": permission,
		"limit":      limit,
	})
	return apperrors.Wrapf(apperrors.ErrRateLimitExceeded, "%s is limited to %d uses per hour", permission, limit)
}

func (v *vault) Cleanup(ctx context.Context) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	keys, err := v.repo.ListAll(ctx)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to list api keys")
	}

	now := v.clock.Now()
	deactivated := 0
	for _, key := range keys {
		if !key.IsActive || !key.IsExpired(now) {
			continue
		}
		if err := v.deactivateLocked(ctx, key); err != nil {
			return deactivated, err
		}
		deactivated++
	}
	v.limiter.Cleanup()
	return deactivated, nil
}

func (v *vault) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for id := range v.timers {
		v.stopTimerLocked(id)
	}
	v.key.Close()
}

// ownedLocked loads a key and hides keys of other users behind ErrAPIKeyNotFound.
func (v *vault) ownedLocked(ctx context.Context, keyID, userID uuid.UUID) (*apikeyDomain.APIKey, error) {
	if v.closed {
		return nil, apikeyDomain.ErrVaultClosed
	}
	key, err := v.repo.Get(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if key.UserID != userID {
		return nil, apikeyDomain.ErrAPIKeyNotFound
	}
	return key, nil
}

// issueSecret generates a new prefixed secret and seals it into key.
func (v *vault) issueSecret(key *apikeyDomain.APIKey) (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Wrap(err, "failed to generate api key secret")
	}
	plainKey := v.cfg.KeyPrefix + base64.RawURLEncoding.EncodeToString(buf)
	cryptoDomain.Zero(buf)

	envelope, err := v.envelope.Seal([]byte(plainKey), key.ID[:])
	if err != nil {
		return "", err
	}
	key.Envelope = *envelope
	key.LookupHash = v.envelope.Fingerprint([]byte(plainKey))
	key.DisplayPrefix = plainKey[:len(v.cfg.KeyPrefix)+displaySecretSize]
	return plainKey, nil
}

// nextRotation is from + interval, or the expiry when it comes first and rotation is
// required. Rotation at expiry renews the key. Nil disables scheduled rotation.
func (v *vault) nextRotation(key *apikeyDomain.APIKey, from time.Time) *time.Time {
	var next *time.Time
	if v.cfg.RotationInterval > 0 {
		t := from.Add(v.cfg.RotationInterval)
		next = &t
	}
	if v.cfg.RequireRotation && key.ExpiresAt != nil && (next == nil || key.ExpiresAt.Before(*next)) {
		t := *key.ExpiresAt
		next = &t
	}
	return next
}

func (v *vault) armTimerLocked(key *apikeyDomain.APIKey) {
	v.stopTimerLocked(key.ID)
	if key.NextRotationAt == nil {
		return
	}

	delay := max(key.NextRotationAt.Sub(v.clock.Now()), 0)
	v.seq++
	seq, id := v.seq, key.ID
	v.timers[id] = rotationTimer{
		timer: v.clock.AfterFunc(delay, func() { v.autoRotate(id, seq) }),
		seq:   seq,
	}
}

func (v *vault) stopTimerLocked(id uuid.UUID) {
	if t, ok := v.timers[id]; ok {
		t.timer.Stop()
		delete(v.timers, id)
	}
}

func (v *vault) auditResult(
	ctx context.Context,
	userID uuid.UUID,
	action string,
	keyID uuid.UUID,
	err error,
	metadata map[string]any,
) {
	if err != nil {
		if metadata == nil {
			metadata = make(map[string]any, 1)
		}
		metadata["error"] = err.Error()
	}
	v.audit.LogKeyEvent(ctx, actorFor(userID), action, keyID.String(), err == nil, metadata)
}

func actorFor(userID uuid.UUID) auditDomain.Actor {
	return auditDomain.Actor{UserID: userID.String()}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
