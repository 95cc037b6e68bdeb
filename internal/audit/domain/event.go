// Package domain defines audit events, alerts and reports.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies an audit event.
type EventType string

const (
	EventAuthentication EventType = "authentication"
	EventAuthorization  EventType = "authorization"
	EventDataAccess     EventType = "data_access"
	EventSystemError    EventType = "system_error"
	EventSecurity       EventType = "security_event"
	EventAPIUsage       EventType = "api_usage"
	EventWebhook        EventType = "webhook"
	EventKeyManagement  EventType = "key_management"
	EventUserManagement EventType = "user_management"
)

// Severity ranks how urgently an event needs attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from 0 (low) to 3 (critical). Unknown values rank as low.
func (s Severity) Rank() int {
	switch s {
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// ParseSeverity maps a level name to a Severity, defaulting to low.
func ParseSeverity(level string) Severity {
	switch Severity(level) {
	case SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(level)
	default:
		return SeverityLow
	}
}

// Outcome records whether the described action succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Actor identifies who or what caused an event.
type Actor struct {
	UserID    string `json:"userId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// EventInput is what callers hand to the pipeline; id and timestamp are stamped on Log.
type EventInput struct {
	Type     EventType
	Severity Severity
	Actor    Actor
	Action   string
	Resource string
	Endpoint string
	Outcome  Outcome
	Error    string
	Before   map[string]any
	After    map[string]any
	Metadata map[string]any
}

// Event is an immutable audit record. Signature is an HMAC over the canonical form and
// is empty when signing is disabled.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Severity  Severity       `json:"severity"`
	Actor     Actor          `json:"actor"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource,omitempty"`
	Endpoint  string         `json:"endpoint,omitempty"`
	Outcome   Outcome        `json:"outcome,omitempty"`
	Error     string         `json:"error,omitempty"`
	Before    map[string]any `json:"before,omitempty"`
	After     map[string]any `json:"after,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Signature []byte         `json:"signature,omitempty"`
}

// IsError reports whether the event describes an error.
func (e *Event) IsError() bool {
	return e.Type == EventSystemError || e.Error != ""
}

// IsFailedLogin reports whether the event is a failed authentication attempt.
func (e *Event) IsFailedLogin() bool {
	return e.Type == EventAuthentication && e.Outcome == OutcomeFailure
}
