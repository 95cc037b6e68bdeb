// Package sink provides the audit batch destinations: console, file, database and
// search index.
package sink

import (
	"context"
	"log/slog"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
)

// ConsoleSink writes events to a structured logger, skipping those below minSeverity.
type ConsoleSink struct {
	logger      *slog.Logger
	minSeverity auditDomain.Severity
}

// NewConsoleSink creates a ConsoleSink.
func NewConsoleSink(logger *slog.Logger, minSeverity auditDomain.Severity) *ConsoleSink {
	return &ConsoleSink{logger: logger, minSeverity: minSeverity}
}

// Name identifies the sink in logs and metrics.
func (c *ConsoleSink) Name() string { return "console" }

// Write logs each event at a level matching its severity.
func (c *ConsoleSink) Write(ctx context.Context, events []*auditDomain.Event) error {
	for _, ev := range events {
		if ev.Severity.Rank() < c.minSeverity.Rank() {
			continue
		}
		c.logger.LogAttrs(ctx, levelFor(ev.Severity), "audit event",
			slog.String("event_id", ev.ID.String()),
			slog.String("type", string(ev.Type)),
			slog.String("severity", string(ev.Severity)),
			slog.String("action", ev.Action),
			slog.String("user_id", ev.Actor.UserID),
			slog.String("ip_address", ev.Actor.IPAddress),
			slog.String("resource", ev.Resource),
			slog.String("outcome", string(ev.Outcome)),
			slog.String("error", ev.Error),
		)
	}
	return nil
}

// Close is a no-op.
func (c *ConsoleSink) Close() error { return nil }

func levelFor(s auditDomain.Severity) slog.Level {
	switch s {
	case auditDomain.SeverityCritical:
		return slog.LevelError
	case auditDomain.SeverityHigh, auditDomain.SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
