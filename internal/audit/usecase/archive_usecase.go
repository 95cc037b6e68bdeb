package usecase

import (
	"context"
	"time"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	auditService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/service"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

const verifyPageSize = 1000

type eventArchive struct {
	repo   EventRepository
	signer *auditService.EventSigner
	clock  clock.Clock
}

// NewEventArchive creates an EventArchive. signer may be nil, in which case every
// signed event is reported invalid.
func NewEventArchive(repo EventRepository, signer *auditService.EventSigner, clk clock.Clock) EventArchive {
	return &eventArchive{repo: repo, signer: signer, clock: clk}
}

func (e *eventArchive) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "days must not be negative, got %d", days)
	}
	olderThan := e.clock.Now().UTC().AddDate(0, 0, -days)

	count, err := e.repo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	return count, nil
}

func (e *eventArchive) List(
	ctx context.Context,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	if end.Before(start) {
		return nil, auditDomain.ErrInvalidTimeRange
	}
	events, err := e.repo.List(ctx, start, end, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}

func (e *eventArchive) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditDomain.VerificationReport, error) {
	if end.Before(start) {
		return nil, auditDomain.ErrInvalidTimeRange
	}

	report := &auditDomain.VerificationReport{InvalidEvents: make([]string, 0)}
	for offset := 0; ; offset += verifyPageSize {
		events, err := e.repo.List(ctx, start, end, offset, verifyPageSize)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit events")
		}

		for _, ev := range events {
			report.TotalChecked++
			if len(ev.Signature) == 0 {
				report.UnsignedCount++
				continue
			}
			report.SignedCount++
			if e.signer != nil && e.signer.Verify(ev) == nil {
				report.ValidCount++
				continue
			}
			report.InvalidCount++
			report.InvalidEvents = append(report.InvalidEvents, ev.ID.String())
		}

		if len(events) < verifyPageSize {
			break
		}
	}

	return report, nil
}
