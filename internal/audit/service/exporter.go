package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"sort"
	"time"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// CSVHeader is the fixed column layout of CSV exports.
var CSVHeader = []string{"id", "timestamp", "type", "severity", "userId", "action", "endpoint"}

// SortByTimestamp orders events by timestamp, keeping insertion order for ties.
func SortByTimestamp(events []*auditDomain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// Export encodes events in the given format. Events are expected to be sanitized.
func Export(format string, events []*auditDomain.Event) (string, error) {
	switch format {
	case FormatJSON:
		return exportJSON(events)
	case FormatCSV:
		return exportCSV(events)
	default:
		return "", auditDomain.ErrUnsupportedExportFormat
	}
}

func exportJSON(events []*auditDomain.Event) (string, error) {
	if events == nil {
		events = []*auditDomain.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal audit events")
	}
	return string(data), nil
}

func exportCSV(events []*auditDomain.Event) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return "", apperrors.Wrap(err, "failed to write csv header")
	}
	for _, ev := range events {
		record := []string{
			ev.ID.String(),
			ev.Timestamp.UTC().Format(time.RFC3339Nano),
			string(ev.Type),
			string(ev.Severity),
			ev.Actor.UserID,
			ev.Action,
			ev.Endpoint,
		}
		if err := w.Write(record); err != nil {
			return "", apperrors.Wrap(err, "failed to write csv record")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", apperrors.Wrap(err, "failed to flush csv")
	}
	return buf.String(), nil
}
