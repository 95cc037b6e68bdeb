package usecase

import (
	"context"
	"log/slog"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
)

// LogNotifier escalates by writing error-level log records.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyCritical logs a critical event immediately.
func (n *LogNotifier) NotifyCritical(ctx context.Context, event *auditDomain.Event) {
	n.logger.ErrorContext(ctx, "critical audit event",
		slog.String("event_id", event.ID.String()),
		slog.String("type", string(event.Type)),
		slog.String("action", event.Action),
		slog.String("user_id", event.Actor.UserID),
		slog.String("ip_address", event.Actor.IPAddress),
	)
}

// NotifyAlert logs a raised alert immediately.
func (n *LogNotifier) NotifyAlert(ctx context.Context, alert *auditDomain.Alert) {
	n.logger.ErrorContext(ctx, "security alert",
		slog.String("alert_id", alert.ID.String()),
		slog.String("type", string(alert.Type)),
		slog.String("severity", string(alert.Severity)),
		slog.String("subject", alert.Subject),
		slog.String("message", alert.Message),
	)
}
