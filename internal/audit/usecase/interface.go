// Package usecase implements the audit pipeline and the persisted event archive.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
)

// Sink is a batch destination. Write may be called concurrently with other sinks but
// never concurrently with itself for the same batch.
type Sink interface {
	Name() string
	Write(ctx context.Context, events []*auditDomain.Event) error
	Close() error
}

// Notifier receives the synchronous escalation path for critical events and alerts.
type Notifier interface {
	NotifyCritical(ctx context.Context, event *auditDomain.Event)
	NotifyAlert(ctx context.Context, alert *auditDomain.Alert)
}

// EventRepository persists and reads back audit events.
type EventRepository interface {
	Create(ctx context.Context, event *auditDomain.Event) error
	List(ctx context.Context, from, to time.Time, offset, limit int) ([]*auditDomain.Event, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// CleanupResult reports what Cleanup reclaimed.
type CleanupResult struct {
	HistoryPruned  int `json:"historyPruned"`
	AlertsPruned   int `json:"alertsPruned"`
	CountersPruned int `json:"countersPruned"`
}

// Pipeline ingests, batches, persists and analyses audit events.
type Pipeline interface {
	// Log records an event. It never fails; internal errors become system-error events.
	Log(ctx context.Context, input *auditDomain.EventInput)

	// Flush writes the pending batch to every sink and cancels the batch timer.
	Flush(ctx context.Context) error

	// GenerateReport summarizes recorded events with start <= timestamp <= end.
	GenerateReport(ctx context.Context, start, end time.Time) (*auditDomain.Report, error)

	// ExportLogs encodes events in the window as "json" or "csv", sorted by timestamp.
	ExportLogs(ctx context.Context, format string, start, end time.Time) (string, error)

	// GetActiveAlerts returns alerts raised within the last 24 hours.
	GetActiveAlerts(ctx context.Context) []*auditDomain.Alert

	// Cleanup drops history past retention, expired alerts and idle counters.
	Cleanup(ctx context.Context) (*CleanupResult, error)

	// Close flushes pending events, waits for in-flight writes and closes every sink.
	Close(ctx context.Context) error
}

// EventArchive manages events persisted by the database sink.
type EventArchive interface {
	// DeleteOlderThan removes events older than days. With dryRun it only counts them.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)

	// VerifyBatch checks the signatures of persisted events within the window.
	VerifyBatch(ctx context.Context, start, end time.Time) (*auditDomain.VerificationReport, error)

	// List returns persisted events within the window, oldest first.
	List(ctx context.Context, start, end time.Time, offset, limit int) ([]*auditDomain.Event, error)
}
