package commands

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
)

type mockEventArchive struct {
	mock.Mock
}

func (m *mockEventArchive) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEventArchive) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditDomain.VerificationReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationReport), args.Error(1)
}

func (m *mockEventArchive) List(
	ctx context.Context,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	args := m.Called(ctx, start, end, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Event), args.Error(1)
}
