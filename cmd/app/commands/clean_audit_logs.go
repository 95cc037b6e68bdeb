package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditUseCase "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/usecase"
)

type cleanResult struct {
	Count  int64 `json:"count"`
	Days   int   `json:"days"`
	DryRun bool  `json:"dry_run"`
}

func (r cleanResult) text() string {
	verb := "Successfully deleted"
	if r.DryRun {
		verb = "Dry-run mode: Would delete"
	}
	return fmt.Sprintf("%s %d audit event(s) older than %d day(s)\n", verb, r.Count, r.Days)
}

// RunCleanAuditLogs removes persisted events older than days. dryRun only counts them.
func RunCleanAuditLogs(
	ctx context.Context,
	archive auditUseCase.EventArchive,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	count, err := archive.DeleteOlderThan(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete audit events: %w", err)
	}
	result := cleanResult{Count: count, Days: days, DryRun: dryRun}

	logger.Info("audit retention applied",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	if format == formatJSON {
		return writeJSON(writer, result)
	}
	_, err = io.WriteString(writer, result.text())
	return err
}
