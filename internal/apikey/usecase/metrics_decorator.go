package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/metrics"
)

// vaultWithMetrics decorates Vault with metrics instrumentation.
type vaultWithMetrics struct {
	next    Vault
	metrics metrics.BusinessMetrics
}

// NewVaultWithMetrics wraps a Vault with metrics recording.
func NewVaultWithMetrics(vault Vault, m metrics.BusinessMetrics) Vault {
	return &vaultWithMetrics{next: vault, metrics: m}
}

func (v *vaultWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	v.metrics.RecordOperation(ctx, "apikey", operation, status)
	v.metrics.RecordDuration(ctx, "apikey", operation, time.Since(start), status)
}

// CreateKey records metrics for key creation.
func (v *vaultWithMetrics) CreateKey(
	ctx context.Context,
	userID uuid.UUID,
	input *apikeyDomain.CreateAPIKeyInput,
) (*apikeyDomain.CreateAPIKeyOutput, error) {
	start := time.Now()
	output, err := v.next.CreateKey(ctx, userID, input)
	v.record(ctx, "key_create", start, err)
	return output, err
}

// ValidateKey records metrics for key validation.
func (v *vaultWithMetrics) ValidateKey(
	ctx context.Context,
	plainKey string,
) (*apikeyDomain.ValidateAPIKeyOutput, error) {
	start := time.Now()
	output, err := v.next.ValidateKey(ctx, plainKey)
	v.record(ctx, "key_validate", start, err)
	return output, err
}

// RotateKey records metrics for manual rotation.
func (v *vaultWithMetrics) RotateKey(
	ctx context.Context,
	keyID, userID uuid.UUID,
) (*apikeyDomain.RotateAPIKeyOutput, error) {
	start := time.Now()
	output, err := v.next.RotateKey(ctx, keyID, userID)
	v.record(ctx, "key_rotate", start, err)
	return output, err
}

// DeactivateKey records metrics for deactivation.
func (v *vaultWithMetrics) DeactivateKey(ctx context.Context, keyID, userID uuid.UUID) error {
	start := time.Now()
	err := v.next.DeactivateKey(ctx, keyID, userID)
	v.record(ctx, "key_deactivate", start, err)
	return err
}

// DeleteKey records metrics for deletion.
func (v *vaultWithMetrics) DeleteKey(ctx context.Context, keyID, userID uuid.UUID) error {
	start := time.Now()
	err := v.next.DeleteKey(ctx, keyID, userID)
	v.record(ctx, "key_delete", start, err)
	return err
}

// GetKey records metrics for key retrieval.
func (v *vaultWithMetrics) GetKey(ctx context.Context, keyID, userID uuid.UUID) (*apikeyDomain.APIKey, error) {
	start := time.Now()
	key, err := v.next.GetKey(ctx, keyID, userID)
	v.record(ctx, "key_get", start, err)
	return key, err
}

// ListKeys records metrics for key listing.
func (v *vaultWithMetrics) ListKeys(ctx context.Context, userID uuid.UUID) ([]*apikeyDomain.APIKey, error) {
	start := time.Now()
	keys, err := v.next.ListKeys(ctx, userID)
	v.record(ctx, "key_list", start, err)
	return keys, err
}

// CheckRateLimit records metrics for rate limit checks.
func (v *vaultWithMetrics) CheckRateLimit(ctx context.Context, keyID uuid.UUID, permission string) error {
	start := time.Now()
	err := v.next.CheckRateLimit(ctx, keyID, permission)
	v.record(ctx, "rate_limit_check", start, err)
	return err
}

// Cleanup records metrics for expired key reclamation.
func (v *vaultWithMetrics) Cleanup(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := v.next.Cleanup(ctx)
	v.record(ctx, "cleanup", start, err)
	return count, err
}

func (v *vaultWithMetrics) Close() {
	v.next.Close()
}
