package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
)

// Thresholds configures the sliding-window alert rules. A zero threshold disables the rule.
type Thresholds struct {
	HighErrorRate      int
	SuspiciousActivity int
	FailedLogins       int
	Window             time.Duration
}

type hit struct {
	at      time.Time
	eventID uuid.UUID
}

// counter is one sliding window. fired stays set until the window drops back below
// the threshold, so one crossing yields one alert.
type counter struct {
	hits  []hit
	fired bool
}

type rule struct {
	alertType auditDomain.AlertType
	severity  auditDomain.Severity
	threshold int
	matches   func(*auditDomain.Event) bool
	message   string
}

// AlertEvaluator keeps per-address sliding counters and raises an alert once per
// threshold crossing. It is not safe for concurrent use.
type AlertEvaluator struct {
	window   time.Duration
	rules    []rule
	counters map[string]*counter
}

// NewAlertEvaluator creates an evaluator for the given thresholds.
func NewAlertEvaluator(th Thresholds) *AlertEvaluator {
	return &AlertEvaluator{
		window: th.Window,
		rules: []rule{
			{
				alertType: auditDomain.AlertHighErrorRate,
				severity:  auditDomain.SeverityHigh,
				threshold: th.HighErrorRate,
				matches:   (*auditDomain.Event).IsError,
				message:   "%d errors from %s within %s",
			},
			{
				alertType: auditDomain.AlertSuspiciousActivity,
				severity:  auditDomain.SeverityMedium,
				threshold: th.SuspiciousActivity,
				matches:   func(*auditDomain.Event) bool { return true },
				message:   "%d requests from %s within %s",
			},
			{
				alertType: auditDomain.AlertBruteForceAttempt,
				severity:  auditDomain.SeverityCritical,
				threshold: th.FailedLogins,
				matches:   (*auditDomain.Event).IsFailedLogin,
				message:   "%d failed logins from %s within %s",
			},
		},
		counters: make(map[string]*counter),
	}
}

// Evaluate records the event and returns any alerts it triggers. Events without a
// network address are not counted.
func (a *AlertEvaluator) Evaluate(event *auditDomain.Event) []*auditDomain.Alert {
	address := event.Actor.IPAddress
	if address == "" {
		return nil
	}

	var alerts []*auditDomain.Alert
	for _, r := range a.rules {
		if r.threshold <= 0 || !r.matches(event) {
			continue
		}

		key := string(r.alertType) + "|" + address
		c, ok := a.counters[key]
		if !ok {
			c = &counter{}
			a.counters[key] = c
		}
		c.hits = append(trimHits(c.hits, event.Timestamp.Add(-a.window)), hit{at: event.Timestamp, eventID: event.ID})

		if len(c.hits) < r.threshold {
			c.fired = false
			continue
		}
		if c.fired {
			continue
		}
		c.fired = true

		ids := make([]uuid.UUID, len(c.hits))
		for i, h := range c.hits {
			ids[i] = h.eventID
		}
		alerts = append(alerts, &auditDomain.Alert{
			ID:        uuid.Must(uuid.NewV7()),
			Type:      r.alertType,
			Severity:  r.severity,
			Message:   fmt.Sprintf(r.message, len(c.hits), address, a.window),
			Subject:   address,
			Count:     len(c.hits),
			EventIDs:  ids,
			CreatedAt: event.Timestamp,
		})
	}
	return alerts
}

// Prune drops counters with no hits inside the window ending at now.
func (a *AlertEvaluator) Prune(now time.Time) int {
	removed := 0
	cutoff := now.Add(-a.window)
	for key, c := range a.counters {
		c.hits = trimHits(c.hits, cutoff)
		if len(c.hits) == 0 {
			delete(a.counters, key)
			removed++
		}
	}
	return removed
}

// trimHits drops hits at or before cutoff. hits are in time order.
func trimHits(hits []hit, cutoff time.Time) []hit {
	i := 0
	for i < len(hits) && !hits[i].at.After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}
