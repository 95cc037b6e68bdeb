package usecase

import (
	"context"
	"time"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/metrics"
)

const metricsDomain = "audit"

// pipelineWithMetrics decorates Pipeline with metrics instrumentation.
type pipelineWithMetrics struct {
	next    Pipeline
	metrics metrics.BusinessMetrics
}

// NewPipelineWithMetrics wraps a Pipeline with metrics recording.
func NewPipelineWithMetrics(pipeline Pipeline, m metrics.BusinessMetrics) Pipeline {
	return &pipelineWithMetrics{next: pipeline, metrics: m}
}

func (p *pipelineWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	p.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Log records the event type as part of the operation name.
func (p *pipelineWithMetrics) Log(ctx context.Context, input *auditDomain.EventInput) {
	start := time.Now()
	p.next.Log(ctx, input)
	if input != nil {
		p.record(ctx, "log_"+string(input.Type), start, nil)
	}
}

func (p *pipelineWithMetrics) Flush(ctx context.Context) error {
	start := time.Now()
	err := p.next.Flush(ctx)
	p.record(ctx, "flush", start, err)
	return err
}

func (p *pipelineWithMetrics) GenerateReport(
	ctx context.Context,
	start, end time.Time,
) (*auditDomain.Report, error) {
	began := time.Now()
	report, err := p.next.GenerateReport(ctx, start, end)
	p.record(ctx, "report_generate", began, err)
	return report, err
}

func (p *pipelineWithMetrics) ExportLogs(ctx context.Context, format string, start, end time.Time) (string, error) {
	began := time.Now()
	out, err := p.next.ExportLogs(ctx, format, start, end)
	p.record(ctx, "logs_export", began, err)
	return out, err
}

func (p *pipelineWithMetrics) GetActiveAlerts(ctx context.Context) []*auditDomain.Alert {
	return p.next.GetActiveAlerts(ctx)
}

func (p *pipelineWithMetrics) Cleanup(ctx context.Context) (*CleanupResult, error) {
	start := time.Now()
	result, err := p.next.Cleanup(ctx)
	p.record(ctx, "cleanup", start, err)
	return result, err
}

func (p *pipelineWithMetrics) Close(ctx context.Context) error {
	return p.next.Close(ctx)
}

// notifierWithMetrics counts every escalation before passing it on.
type notifierWithMetrics struct {
	next    Notifier
	metrics metrics.BusinessMetrics
}

// NewNotifierWithMetrics wraps a Notifier so escalations show up as security alert metrics.
func NewNotifierWithMetrics(notifier Notifier, m metrics.BusinessMetrics) Notifier {
	return &notifierWithMetrics{next: notifier, metrics: m}
}

func (n *notifierWithMetrics) NotifyCritical(ctx context.Context, event *auditDomain.Event) {
	n.metrics.RecordSecurityAlert(ctx, string(event.Type), string(event.Severity))
	n.next.NotifyCritical(ctx, event)
}

func (n *notifierWithMetrics) NotifyAlert(ctx context.Context, alert *auditDomain.Alert) {
	n.metrics.RecordSecurityAlert(ctx, string(alert.Type), string(alert.Severity))
	n.next.NotifyAlert(ctx, alert)
}
