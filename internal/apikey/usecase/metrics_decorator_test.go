package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordSecurityAlert(ctx context.Context, kind, severity string) {
	m.Called(ctx, kind, severity)
}

type mockVault struct {
	mock.Mock
}

func (m *mockVault) CreateKey(
	ctx context.Context,
	userID uuid.UUID,
	input *apikeyDomain.CreateAPIKeyInput,
) (*apikeyDomain.CreateAPIKeyOutput, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeyDomain.CreateAPIKeyOutput), args.Error(1)
}

func (m *mockVault) ValidateKey(ctx context.Context, plainKey string) (*apikeyDomain.ValidateAPIKeyOutput, error) {
	args := m.Called(ctx, plainKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeyDomain.ValidateAPIKeyOutput), args.Error(1)
}

func (m *mockVault) RotateKey(ctx context.Context, keyID, userID uuid.UUID) (*apikeyDomain.RotateAPIKeyOutput, error) {
	args := m.Called(ctx, keyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeyDomain.RotateAPIKeyOutput), args.Error(1)
}

func (m *mockVault) DeactivateKey(ctx context.Context, keyID, userID uuid.UUID) error {
	args := m.Called(ctx, keyID, userID)
	return args.Error(0)
}

func (m *mockVault) DeleteKey(ctx context.Context, keyID, userID uuid.UUID) error {
	args := m.Called(ctx, keyID, userID)
	return args.Error(0)
}

func (m *mockVault) GetKey(ctx context.Context, keyID, userID uuid.UUID) (*apikeyDomain.APIKey, error) {
	args := m.Called(ctx, keyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeyDomain.APIKey), args.Error(1)
}

func (m *mockVault) ListKeys(ctx context.Context, userID uuid.UUID) ([]*apikeyDomain.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*apikeyDomain.APIKey), args.Error(1)
}

func (m *mockVault) CheckRateLimit(ctx context.Context, keyID uuid.UUID, permission string) error {
	args := m.Called(ctx, keyID, permission)
	return args.Error(0)
}

func (m *mockVault) Cleanup(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockVault) Close() {
	m.Called()
}

func expectVaultRecord(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "apikey", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "apikey", operation, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestVaultWithMetrics(t *testing.T) {
	ctx := context.Background()
	keyID, userID := uuid.New(), uuid.New()

	t.Run("CreateKey success", func(t *testing.T) {
		next, m := &mockVault{}, &mockBusinessMetrics{}
		input := notionInput(0)
		output := &apikeyDomain.CreateAPIKeyOutput{PlainKey: "zoe_x"}

		next.On("CreateKey", ctx, userID, input).Return(output, nil).Once()
		expectVaultRecord(m, ctx, "key_create", "success")

		res, err := NewVaultWithMetrics(next, m).CreateKey(ctx, userID, input)
		assert.NoError(t, err)
		assert.Equal(t, output, res)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("ValidateKey error", func(t *testing.T) {
		next, m := &mockVault{}, &mockBusinessMetrics{}

		next.On("ValidateKey", ctx, "zoe_bad").Return(nil, apikeyDomain.ErrAPIKeyInvalid).Once()
		expectVaultRecord(m, ctx, "key_validate", "error")

		res, err := NewVaultWithMetrics(next, m).ValidateKey(ctx, "zoe_bad")
		assert.ErrorIs(t, err, apikeyDomain.ErrAPIKeyInvalid)
		assert.Nil(t, res)
		m.AssertExpectations(t)
	})

	t.Run("RotateKey success", func(t *testing.T) {
		next, m := &mockVault{}, &mockBusinessMetrics{}
		output := &apikeyDomain.RotateAPIKeyOutput{PlainKey: "zoe_y"}

		next.On("RotateKey", ctx, keyID, userID).Return(output, nil).Once()
		expectVaultRecord(m, ctx, "key_rotate", "success")

		res, err := NewVaultWithMetrics(next, m).RotateKey(ctx, keyID, userID)
		assert.NoError(t, err)
		assert.Equal(t, output, res)
		m.AssertExpectations(t)
	})

	t.Run("DeactivateKey and DeleteKey", func(t *testing.T) {
		next, m := &mockVault{}, &mockBusinessMetrics{}

		next.On("DeactivateKey", ctx, keyID, userID).Return(nil).Once()
		next.On("DeleteKey", ctx, keyID, userID).Return(apikeyDomain.ErrAPIKeyNotFound).Once()
		expectVaultRecord(m, ctx, "key_deactivate", "success")
		expectVaultRecord(m, ctx, "key_delete", "error")

		v := NewVaultWithMetrics(next, m)
		assert.NoError(t, v.DeactivateKey(ctx, keyID, userID))
		assert.ErrorIs(t, v.DeleteKey(ctx, keyID, userID), apikeyDomain.ErrAPIKeyNotFound)
		m.AssertExpectations(t)
	})

	t.Run("Inspection and maintenance", func(t *testing.T) {
		next, m := &mockVault{}, &mockBusinessMetrics{}

		next.On("GetKey", ctx, keyID, userID).Return(&apikeyDomain.APIKey{ID: keyID}, nil).Once()
		next.On("ListKeys", ctx, userID).Return([]*apikeyDomain.APIKey{}, nil).Once()
		next.On("CheckRateLimit", ctx, keyID, "notion:read").Return(nil).Once()
		next.On("Cleanup", ctx).Return(2, nil).Once()
		next.On("Close").Return().Once()
		expectVaultRecord(m, ctx, "key_get", "success")
		expectVaultRecord(m, ctx, "key_list", "success")
		expectVaultRecord(m, ctx, "rate_limit_check", "success")
		expectVaultRecord(m, ctx, "cleanup", "success")

		v := NewVaultWithMetrics(next, m)
		key, err := v.GetKey(ctx, keyID, userID)
		assert.NoError(t, err)
		assert.Equal(t, keyID, key.ID)
		_, err = v.ListKeys(ctx, userID)
		assert.NoError(t, err)
		assert.NoError(t, v.CheckRateLimit(ctx, keyID, "notion:read"))
		count, err := v.Cleanup(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 2, count)
		v.Close()

		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})
}
