package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	auditUseCase "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/usecase"
)

type verifyResult struct {
	TotalChecked  int64    `json:"total_checked"`
	SignedCount   int64    `json:"signed_count"`
	UnsignedCount int64    `json:"unsigned_count"`
	ValidCount    int64    `json:"valid_count"`
	InvalidCount  int64    `json:"invalid_count"`
	InvalidEvents []string `json:"invalid_events"`
	Passed        bool     `json:"passed"`
}

func newVerifyResult(r *auditDomain.VerificationReport) verifyResult {
	invalid := r.InvalidEvents
	if invalid == nil {
		invalid = []string{}
	}
	return verifyResult{
		TotalChecked:  r.TotalChecked,
		SignedCount:   r.SignedCount,
		UnsignedCount: r.UnsignedCount,
		ValidCount:    r.ValidCount,
		InvalidCount:  r.InvalidCount,
		InvalidEvents: invalid,
		Passed:        r.InvalidCount == 0,
	}
}

// RunVerifyAuditLogs recomputes the signature of every persisted event in
// [startDate, endDate) and fails when any of them does not match.
func RunVerifyAuditLogs(
	ctx context.Context,
	archive auditUseCase.EventArchive,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	format string,
) error {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return err
	}

	report, err := archive.VerifyBatch(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to verify audit events: %w", err)
	}
	result := newVerifyResult(report)

	logger.Info("audit verification finished",
		slog.Time("start", start),
		slog.Time("end", end),
		slog.Int64("checked", result.TotalChecked),
		slog.Int64("invalid", result.InvalidCount),
		slog.Int64("unsigned", result.UnsignedCount),
	)

	if format == formatJSON {
		err = writeJSON(writer, result)
	} else {
		_, err = io.WriteString(writer, result.text(start, end))
	}
	if err != nil {
		return err
	}

	if !result.Passed {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", result.InvalidCount)
	}
	return nil
}

func (r verifyResult) text(start, end time.Time) string {
	var b strings.Builder
	b.WriteString("Audit Event Integrity Verification\n")
	b.WriteString("==================================\n\n")
	fmt.Fprintf(&b, "Time Range: %s to %s\n\n", start.Format(time.DateTime), end.Format(time.DateTime))

	for _, row := range []struct {
		label string
		value int64
	}{
		{"Total Checked", r.TotalChecked},
		{"Signed", r.SignedCount},
		{"Unsigned", r.UnsignedCount},
		{"Valid", r.ValidCount},
		{"Invalid", r.InvalidCount},
	} {
		fmt.Fprintf(&b, "%-15s %d\n", row.label+":", row.value)
	}
	b.WriteString("\n")

	switch {
	case !r.Passed:
		fmt.Fprintf(&b, "WARNING: %d event(s) failed integrity check!\n\nInvalid Event IDs:\n", r.InvalidCount)
		for _, id := range r.InvalidEvents {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
		b.WriteString("\nStatus: FAILED\n")
	case r.TotalChecked == 0:
		b.WriteString("Status: No events found in specified time range\n")
	default:
		b.WriteString("Status: PASSED\n")
	}
	return b.String()
}
