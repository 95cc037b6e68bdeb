package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	auditService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/service"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
)

var pipelineStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// recordingSink keeps every batch it receives and can be told to fail.
type recordingSink struct {
	name    string
	mu      sync.Mutex
	batches [][]*auditDomain.Event
	err     error
	closed  bool
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Write(_ context.Context, events []*auditDomain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
	return r.err
}

func (r *recordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingSink) Batches() [][]*auditDomain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]*auditDomain.Event(nil), r.batches...)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyCritical(ctx context.Context, event *auditDomain.Event) {
	m.Called(ctx, event)
}

func (m *mockNotifier) NotifyAlert(ctx context.Context, alert *auditDomain.Alert) {
	m.Called(ctx, alert)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Enabled:      true,
		BatchSize:    50,
		BatchTimeout: 5 * time.Second,
		Thresholds: auditService.Thresholds{
			HighErrorRate:      10,
			SuspiciousActivity: 100,
			FailedLogins:       5,
			Window:             15 * time.Minute,
		},
		SensitiveFields: []string{"password", "token"},
		ExportFormats:   []string{"json", "csv"},
		HistoryLimit:    10000,
		Retention:       90 * 24 * time.Hour,
	}
}

type pipelineFixture struct {
	pipeline Pipeline
	clock    *clock.Fake
	sink     *recordingSink
	notifier *mockNotifier
}

func newPipelineFixture(t *testing.T, cfg PipelineConfig, sinks ...Sink) *pipelineFixture {
	t.Helper()
	clk := clock.NewFake(pipelineStart)
	sink := &recordingSink{name: "recording"}
	notifier := &mockNotifier{}
	all := append([]Sink{sink}, sinks...)
	return &pipelineFixture{
		pipeline: NewPipeline(cfg, clk, all, notifier, nil, discardLogger()),
		clock:    clk,
		sink:     sink,
		notifier: notifier,
	}
}

func apiEvent(userID, endpoint string) *auditDomain.EventInput {
	return &auditDomain.EventInput{
		Type:     auditDomain.EventAPIUsage,
		Severity: auditDomain.SeverityLow,
		Actor:    auditDomain.Actor{UserID: userID},
		Action:   "GET",
		Endpoint: endpoint,
		Outcome:  auditDomain.OutcomeSuccess,
	}
}
