// Package commands implements the CLI actions. Each Run* function takes its
// collaborators explicitly and writes human or JSON output to the given writer.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
)

const formatJSON = "json"

// dateLayouts are tried in order; all bounds are interpreted as UTC.
var dateLayouts = []string{time.DateTime, time.DateOnly}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		logger.Error("failed to close migrate instance",
			slog.Any("source_error", srcErr),
			slog.Any("database_error", dbErr),
		)
	}
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q does not match YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", value)
}

// parseRange returns [start, end) and rejects empty or inverted ranges.
func parseRange(startDate, endDate string) (start, end time.Time, err error) {
	if start, err = parseDate(startDate); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	if end, err = parseDate(endDate); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.New("end date must be after start date")
	}
	return start, end, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
