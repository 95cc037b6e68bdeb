package domain

import "time"

// KeyCount pairs a grouping key with its event count.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Report summarizes the events recorded within a time window.
type Report struct {
	Start             time.Time         `json:"start"`
	End               time.Time         `json:"end"`
	TotalEvents       int               `json:"totalEvents"`
	HighSeverityRatio float64           `json:"highSeverityRatio"`
	ByType            map[EventType]int `json:"byType"`
	BySeverity        map[Severity]int  `json:"bySeverity"`
	TopUsers          []KeyCount        `json:"topUsers"`
	TopEndpoints      []KeyCount        `json:"topEndpoints"`
	Events            []*Event          `json:"events"`
}

// VerificationReport summarizes a signature check over persisted events.
type VerificationReport struct {
	TotalChecked  int64    `json:"totalChecked"`
	SignedCount   int64    `json:"signedCount"`
	UnsignedCount int64    `json:"unsignedCount"`
	ValidCount    int64    `json:"validCount"`
	InvalidCount  int64    `json:"invalidCount"`
	InvalidEvents []string `json:"invalidEvents"`
}
