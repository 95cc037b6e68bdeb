package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Operation statuses used as the "status" label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// BusinessMetrics records use-case level metrics for the access controller ("auth"),
// the credential vault ("apikey") and the audit pipeline ("audit").
type BusinessMetrics interface {
	// RecordOperation counts one operation, e.g. ("auth", "login", "error").
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes how long an operation took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordSecurityAlert counts an escalation sent to the notifier: a raised alert
	// (kind is the alert type) or a critical event (kind is the event type).
	RecordSecurityAlert(ctx context.Context, kind, severity string)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
	alerts     metric.Int64Counter
}

// NewBusinessMetrics creates the instruments on a meter named after namespace.
// Every instrument name is prefixed with namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of access control, vault and audit operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durations, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of access control, vault and audit operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	alerts, err := meter.Int64Counter(
		fmt.Sprintf("%s_security_alerts_total", namespace),
		metric.WithDescription("Total number of security escalations sent to the notifier"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create security alert counter: %w", err)
	}

	return &businessMetrics{
		operations: operations,
		durations:  durations,
		alerts:     alerts,
	}, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordSecurityAlert(ctx context.Context, kind, severity string) {
	b.alerts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("severity", severity),
	))
}

// NoOpBusinessMetrics discards everything. Used when METRICS_ENABLED=false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (n *NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (n *NoOpBusinessMetrics) RecordSecurityAlert(context.Context, string, string) {}
