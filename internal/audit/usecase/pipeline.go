package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	auditService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/service"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
)

const topEntries = 10

// PipelineConfig configures batching, alerting, masking, export and retention.
type PipelineConfig struct {
	Enabled         bool
	BatchSize       int
	BatchTimeout    time.Duration
	Thresholds      auditService.Thresholds
	SensitiveFields []string
	ExportFormats   []string
	HistoryLimit    int
	Retention       time.Duration
}

// pipeline batches events in memory and fans each batch out to every sink.
//
// mu guards all mutable state. Sink writes happen outside mu; inflight counts them so
// Close can wait. inflight.Add is only called under mu while the pipeline is open.
type pipeline struct {
	cfg       PipelineConfig
	clock     clock.Clock
	sinks     []Sink
	notifier  Notifier
	signer    *auditService.EventSigner
	sanitizer *auditService.Sanitizer
	logger    *slog.Logger

	mu        sync.Mutex
	evaluator *auditService.AlertEvaluator
	batch     []*auditDomain.Event
	timer     clock.Timer
	history   []*auditDomain.Event
	alerts    []*auditDomain.Alert
	closed    bool
	inflight  sync.WaitGroup
}

// NewPipeline creates the audit pipeline. signer may be nil to disable event signing.
func NewPipeline(
	cfg PipelineConfig,
	clk clock.Clock,
	sinks []Sink,
	notifier Notifier,
	signer *auditService.EventSigner,
	logger *slog.Logger,
) Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	return &pipeline{
		cfg:       cfg,
		clock:     clk,
		sinks:     sinks,
		notifier:  notifier,
		signer:    signer,
		sanitizer: auditService.NewSanitizer(cfg.SensitiveFields),
		logger:    logger,
		evaluator: auditService.NewAlertEvaluator(cfg.Thresholds),
	}
}

// Log stamps, masks and signs the event, evaluates alert rules and either flushes the
// full batch synchronously or arms the batch timer. Critical events and new alerts are
// handed to the notifier before Log returns.
func (p *pipeline) Log(ctx context.Context, input *auditDomain.EventInput) {
	if !p.cfg.Enabled || input == nil {
		return
	}

	event := p.newEvent(input)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("audit event dropped after close", slog.String("action", event.Action))
		return
	}
	p.appendLocked(event)
	alerts := p.evaluator.Evaluate(event)
	for _, alert := range alerts {
		p.alerts = append(p.alerts, alert)
		p.appendLocked(p.alertEvent(alert))
	}
	batch := p.scheduleLocked()
	p.mu.Unlock()

	if event.Severity == auditDomain.SeverityCritical {
		p.notifier.NotifyCritical(ctx, event)
	}
	for _, alert := range alerts {
		p.notifier.NotifyAlert(ctx, alert)
	}

	if batch != nil {
		defer p.inflight.Done()
		_ = p.write(ctx, batch)
	}
}

// Flush writes the pending batch now. Sink failures are joined into the returned error
// and recorded as system-error events in the next batch.
func (p *pipeline) Flush(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return auditDomain.ErrPipelineClosed
	}
	batch := p.swapLocked()
	if batch == nil {
		p.mu.Unlock()
		return nil
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	defer p.inflight.Done()
	return p.write(ctx, batch)
}

func (p *pipeline) onBatchTimeout() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	batch := p.swapLocked()
	if batch == nil {
		p.mu.Unlock()
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	defer p.inflight.Done()
	_ = p.write(context.Background(), batch)
}

// scheduleLocked returns the batch when it is full (registering an in-flight write),
// otherwise arms the timer if none is pending.
func (p *pipeline) scheduleLocked() []*auditDomain.Event {
	if len(p.batch) >= p.cfg.BatchSize {
		batch := p.swapLocked()
		p.inflight.Add(1)
		return batch
	}
	p.armTimerLocked()
	return nil
}

func (p *pipeline) armTimerLocked() {
	if p.timer == nil && len(p.batch) > 0 {
		p.timer = p.clock.AfterFunc(p.cfg.BatchTimeout, p.onBatchTimeout)
	}
}

// swapLocked detaches the pending batch and cancels its timer.
func (p *pipeline) swapLocked() []*auditDomain.Event {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if len(p.batch) == 0 {
		return nil
	}
	batch := p.batch
	p.batch = nil
	return batch
}

func (p *pipeline) appendLocked(event *auditDomain.Event) {
	p.batch = append(p.batch, event)
	p.history = append(p.history, event)
	if limit := p.cfg.HistoryLimit; limit > 0 && len(p.history) > limit {
		p.history = slices.Clone(p.history[len(p.history)-limit:])
	}
}

// write fans the batch out to all sinks in parallel. One sink failing does not stop
// the others.
func (p *pipeline) write(ctx context.Context, batch []*auditDomain.Event) error {
	if len(p.sinks) == 0 {
		return nil
	}

	errs := make([]error, len(p.sinks))
	var g errgroup.Group
	for i, sink := range p.sinks {
		g.Go(func() error {
			if err := sink.Write(ctx, batch); err != nil {
				errs[i] = fmt.Errorf("%w (%s): %w", auditDomain.ErrSinkWrite, sink.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed = append(failed, err)
		p.logger.Error("audit sink write failed",
			slog.String("sink", p.sinks[i].Name()),
			slog.Int("events", len(batch)),
			slog.Any("error", err),
		)
		p.recordSinkFailure(p.sinks[i].Name(), err)
	}
	return errors.Join(failed...)
}

// recordSinkFailure queues a low-severity system error for the next batch. It never
// flushes synchronously, so a failing sink cannot recurse into write.
func (p *pipeline) recordSinkFailure(sinkName string, err error) {
	event := p.newEvent(&auditDomain.EventInput{
		Type:     auditDomain.EventSystemError,
		Severity: auditDomain.SeverityLow,
		Action:   "audit.sink_write",
		Resource: sinkName,
		Outcome:  auditDomain.OutcomeFailure,
		Error:    err.Error(),
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.appendLocked(event)
	p.armTimerLocked()
}

func (p *pipeline) newEvent(input *auditDomain.EventInput) *auditDomain.Event {
	severity := input.Severity
	if severity == "" {
		severity = auditDomain.SeverityLow
	}

	event := &auditDomain.Event{
		ID:        uuid.Must(uuid.NewV7()),
		Timestamp: p.clock.Now().UTC().Truncate(time.Microsecond),
		Type:      input.Type,
		Severity:  severity,
		Actor:     input.Actor,
		Action:    input.Action,
		Resource:  input.Resource,
		Endpoint:  input.Endpoint,
		Outcome:   input.Outcome,
		Error:     input.Error,
		Before:    p.sanitizer.Sanitize(input.Before),
		After:     p.sanitizer.Sanitize(input.After),
		Metadata:  p.sanitizer.Sanitize(input.Metadata),
	}

	if p.signer != nil {
		signature, err := p.signer.Sign(event)
		if err != nil {
			p.logger.Warn("failed to sign audit event", slog.String("event_id", event.ID.String()), slog.Any("error", err))
		} else {
			event.Signature = signature
		}
	}
	return event
}

// alertEvent records a raised alert in the event stream. It carries no address so it
// is never counted by the alert rules.
func (p *pipeline) alertEvent(alert *auditDomain.Alert) *auditDomain.Event {
	ids := make([]any, len(alert.EventIDs))
	for i, id := range alert.EventIDs {
		ids[i] = id.String()
	}
	return p.newEvent(&auditDomain.EventInput{
		Type:     auditDomain.EventSecurity,
		Severity: alert.Severity,
		Action:   "alert." + string(alert.Type),
		Resource: alert.Subject,
		Metadata: map[string]any{
			"alertId":  alert.ID.String(),
			"message":  alert.Message,
			"count":    alert.Count,
			"eventIds": ids,
		},
	})
}

// eventsBetween returns a timestamp-sorted copy of history within [start, end].
func (p *pipeline) eventsBetween(start, end time.Time) []*auditDomain.Event {
	p.mu.Lock()
	events := make([]*auditDomain.Event, 0, len(p.history))
	for _, ev := range p.history {
		if !ev.Timestamp.Before(start) && !ev.Timestamp.After(end) {
			events = append(events, ev)
		}
	}
	p.mu.Unlock()

	auditService.SortByTimestamp(events)
	return events
}

// GenerateReport summarizes the window.
func (p *pipeline) GenerateReport(_ context.Context, start, end time.Time) (*auditDomain.Report, error) {
	if end.Before(start) {
		return nil, auditDomain.ErrInvalidTimeRange
	}

	events := p.eventsBetween(start, end)
	report := &auditDomain.Report{
		Start:       start,
		End:         end,
		TotalEvents: len(events),
		ByType:      make(map[auditDomain.EventType]int),
		BySeverity:  make(map[auditDomain.Severity]int),
		Events:      events,
	}

	users := make(map[string]int)
	endpoints := make(map[string]int)
	highCount := 0
	for _, ev := range events {
		report.ByType[ev.Type]++
		report.BySeverity[ev.Severity]++
		if ev.Severity.Rank() >= auditDomain.SeverityHigh.Rank() {
			highCount++
		}
		if ev.Actor.UserID != "" {
			users[ev.Actor.UserID]++
		}
		if ev.Endpoint != "" {
			endpoints[ev.Endpoint]++
		}
	}

	if len(events) > 0 {
		report.HighSeverityRatio = float64(highCount) / float64(len(events))
	}
	report.TopUsers = topCounts(users)
	report.TopEndpoints = topCounts(endpoints)
	return report, nil
}

func topCounts(counts map[string]int) []auditDomain.KeyCount {
	out := make([]auditDomain.KeyCount, 0, len(counts))
	for key, count := range counts {
		out = append(out, auditDomain.KeyCount{Key: key, Count: count})
	}
	slices.SortFunc(out, func(a, b auditDomain.KeyCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if len(out) > topEntries {
		out = out[:topEntries]
	}
	return out
}

// ExportLogs encodes the window in an enabled format.
func (p *pipeline) ExportLogs(_ context.Context, format string, start, end time.Time) (string, error) {
	if !slices.Contains(p.cfg.ExportFormats, format) {
		return "", auditDomain.ErrUnsupportedExportFormat
	}
	if end.Before(start) {
		return "", auditDomain.ErrInvalidTimeRange
	}
	return auditService.Export(format, p.eventsBetween(start, end))
}

// GetActiveAlerts prunes expired alerts and returns the rest, oldest first.
func (p *pipeline) GetActiveAlerts(_ context.Context) []*auditDomain.Alert {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pruneAlertsLocked(p.clock.Now())
	return slices.Clone(p.alerts)
}

func (p *pipeline) pruneAlertsLocked(now time.Time) int {
	cutoff := now.Add(-auditDomain.AlertRetention)
	before := len(p.alerts)
	p.alerts = slices.DeleteFunc(p.alerts, func(a *auditDomain.Alert) bool {
		return a.CreatedAt.Before(cutoff)
	})
	return before - len(p.alerts)
}

// Cleanup reclaims memory held by expired history, alerts and counters.
func (p *pipeline) Cleanup(_ context.Context) (*CleanupResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	result := &CleanupResult{
		AlertsPruned:   p.pruneAlertsLocked(now),
		CountersPruned: p.evaluator.Prune(now),
	}

	if p.cfg.Retention > 0 {
		cutoff := now.Add(-p.cfg.Retention)
		before := len(p.history)
		p.history = slices.DeleteFunc(p.history, func(ev *auditDomain.Event) bool {
			return ev.Timestamp.Before(cutoff)
		})
		result.HistoryPruned = before - len(p.history)
	}
	return result, nil
}

// Close is idempotent.
func (p *pipeline) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	batch := p.swapLocked()
	p.mu.Unlock()

	var errs []error
	if batch != nil {
		if err := p.write(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}
	p.inflight.Wait()

	for _, sink := range p.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s sink: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
