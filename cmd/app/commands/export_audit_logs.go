package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	auditService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/service"
	auditUseCase "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/usecase"
)

const exportPageSize = 500

// RunExportAuditLogs writes every persisted event in the window to writer as json or csv.
func RunExportAuditLogs(
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

	events := make([]*auditDomain.Event, 0)
	for offset := 0; ; offset += exportPageSize {
		page, err := archive.List(ctx, start, end, offset, exportPageSize)
		if err != nil {
			return fmt.Errorf("failed to list audit events: %w", err)
		}
		events = append(events, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	auditService.SortByTimestamp(events)
	output, err := auditService.Export(format, events)
	if err != nil {
		return fmt.Errorf("failed to export audit events: %w", err)
	}

	_, _ = io.WriteString(writer, output)

	logger.Info("export completed",
		slog.Int("count", len(events)),
		slog.String("format", format),
	)
	return nil
}
