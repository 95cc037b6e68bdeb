package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertType names the threshold rule that fired.
type AlertType string

const (
	AlertHighErrorRate      AlertType = "HIGH_ERROR_RATE"
	AlertSuspiciousActivity AlertType = "SUSPICIOUS_ACTIVITY"
	AlertBruteForceAttempt  AlertType = "BRUTE_FORCE_ATTEMPT"
)

// AlertRetention is how long an alert stays active.
const AlertRetention = 24 * time.Hour

// Alert is raised once each time a sliding counter crosses its threshold.
type Alert struct {
	ID        uuid.UUID   `json:"id"`
	Type      AlertType   `json:"type"`
	Severity  Severity    `json:"severity"`
	Message   string      `json:"message"`
	Subject   string      `json:"subject"`
	Count     int         `json:"count"`
	EventIDs  []uuid.UUID `json:"eventIds"`
	CreatedAt time.Time   `json:"createdAt"`
}
