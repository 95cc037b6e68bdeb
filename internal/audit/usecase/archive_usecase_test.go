package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	auditService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/service"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

type mockEventRepository struct {
	mock.Mock
}

func (m *mockEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventRepository) List(
	ctx context.Context,
	from, to time.Time,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	args := m.Called(ctx, from, to, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Event), args.Error(1)
}

func (m *mockEventRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

func TestEventArchive_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(pipelineStart)

	t.Run("Success_ComputesCutoff", func(t *testing.T) {
		repo := &mockEventRepository{}
		archive := NewEventArchive(repo, nil, clk)

		repo.On("DeleteOlderThan", ctx, pipelineStart.AddDate(0, 0, -30), true).Return(int64(7), nil).Once()

		count, err := archive.DeleteOlderThan(ctx, 30, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
		repo.AssertExpectations(t)
	})

	t.Run("Error_NegativeDays", func(t *testing.T) {
		archive := NewEventArchive(&mockEventRepository{}, nil, clk)

		_, err := archive.DeleteOlderThan(ctx, -1, false)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &mockEventRepository{}
		archive := NewEventArchive(repo, nil, clk)
		repo.On("DeleteOlderThan", ctx, mock.Anything, false).Return(int64(0), assert.AnError).Once()

		_, err := archive.DeleteOlderThan(ctx, 1, false)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestEventArchive_VerifyBatch(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(pipelineStart)
	start, end := pipelineStart.Add(-time.Hour), pipelineStart

	signer, err := auditService.NewEventSigner([]byte("a-signing-secret-of-sufficient-length"))
	require.NoError(t, err)

	newSigned := func(action string) *auditDomain.Event {
		ev := &auditDomain.Event{
			ID:        uuid.New(),
			Timestamp: pipelineStart,
			Type:      auditDomain.EventAPIUsage,
			Severity:  auditDomain.SeverityLow,
			Action:    action,
		}
		sig, err := signer.Sign(ev)
		require.NoError(t, err)
		ev.Signature = sig
		return ev
	}

	t.Run("Success_CountsValidInvalidUnsigned", func(t *testing.T) {
		valid := newSigned("GET")
		tampered := newSigned("GET")
		tampered.Action = "DELETE"
		unsigned := &auditDomain.Event{ID: uuid.New(), Timestamp: pipelineStart}

		repo := &mockEventRepository{}
		repo.On("List", ctx, start, end, 0, verifyPageSize).
			Return([]*auditDomain.Event{valid, tampered, unsigned}, nil).
			Once()

		report, err := NewEventArchive(repo, signer, clk).VerifyBatch(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, int64(3), report.TotalChecked)
		assert.Equal(t, int64(2), report.SignedCount)
		assert.Equal(t, int64(1), report.UnsignedCount)
		assert.Equal(t, int64(1), report.ValidCount)
		assert.Equal(t, int64(1), report.InvalidCount)
		assert.Equal(t, []string{tampered.ID.String()}, report.InvalidEvents)
		repo.AssertExpectations(t)
	})

	t.Run("Success_Paginates", func(t *testing.T) {
		page := make([]*auditDomain.Event, verifyPageSize)
		for i := range page {
			page[i] = &auditDomain.Event{ID: uuid.New(), Timestamp: pipelineStart}
		}

		repo := &mockEventRepository{}
		repo.On("List", ctx, start, end, 0, verifyPageSize).Return(page, nil).Once()
		repo.On("List", ctx, start, end, verifyPageSize, verifyPageSize).
			Return([]*auditDomain.Event{}, nil).
			Once()

		report, err := NewEventArchive(repo, signer, clk).VerifyBatch(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, int64(verifyPageSize), report.UnsignedCount)
		repo.AssertExpectations(t)
	})

	t.Run("Error_InvalidRange", func(t *testing.T) {
		_, err := NewEventArchive(&mockEventRepository{}, signer, clk).VerifyBatch(ctx, end, start)
		assert.ErrorIs(t, err, auditDomain.ErrInvalidTimeRange)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &mockEventRepository{}
		repo.On("List", ctx, start, end, 0, verifyPageSize).Return(nil, assert.AnError).Once()

		report, err := NewEventArchive(repo, signer, clk).VerifyBatch(ctx, start, end)
		assert.Nil(t, report)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
