package sink

import (
	"context"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/database"
)

// EventWriter persists a single event.
type EventWriter interface {
	Create(ctx context.Context, event *auditDomain.Event) error
}

// DatabaseSink writes each batch in one transaction.
type DatabaseSink struct {
	repo      EventWriter
	txManager database.TxManager
}

// NewDatabaseSink creates a DatabaseSink.
func NewDatabaseSink(repo EventWriter, txManager database.TxManager) *DatabaseSink {
	return &DatabaseSink{repo: repo, txManager: txManager}
}

// Name identifies the sink in logs and metrics.
func (d *DatabaseSink) Name() string { return "database" }

// Write inserts the batch atomically.
func (d *DatabaseSink) Write(ctx context.Context, events []*auditDomain.Event) error {
	return d.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, ev := range events {
			if err := d.repo.Create(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close is a no-op; the pool is owned by the container.
func (d *DatabaseSink) Close() error { return nil }
