package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/cmd/app/commands"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/app"
	auditUseCase "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/usecase"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/config"
)

var rangeFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "start-date",
		Aliases:  []string{"s"},
		Required: true,
		Usage:    "Inclusive lower bound, YYYY-MM-DD or YYYY-MM-DD HH:MM:SS (UTC)",
	},
	&cli.StringFlag{
		Name:     "end-date",
		Aliases:  []string{"e"},
		Required: true,
		Usage:    "Exclusive upper bound, YYYY-MM-DD or YYYY-MM-DD HH:MM:SS (UTC)",
	},
}

func formatFlag(value, usage string) *cli.StringFlag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: value, Usage: usage}
}

// archiveAction opens the event archive from the environment and hands it to run.
func archiveAction(
	run func(ctx context.Context, cmd *cli.Command, archive auditUseCase.EventArchive, logger *slog.Logger) error,
) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		container := app.NewContainer(config.Load())
		logger := container.Logger()
		defer closeContainer(container, logger)

		archive, err := container.EventArchive()
		if err != nil {
			return err
		}
		return run(ctx, cmd, archive, logger)
	}
}

func getAuditCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "clean-audit-logs",
			Usage: "Delete persisted audit events older than the retention window",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Retention window in days",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Only count the events that would be deleted",
				},
				formatFlag("text", "Output format: text or json"),
			},
			Action: archiveAction(func(ctx context.Context, cmd *cli.Command, archive auditUseCase.EventArchive, logger *slog.Logger) error {
				return commands.RunCleanAuditLogs(ctx, archive, logger, os.Stdout,
					int(cmd.Int("days")), cmd.Bool("dry-run"), cmd.String("format"))
			}),
		},
		{
			Name:  "verify-audit-logs",
			Usage: "Check the HMAC signature of every persisted event in a time range",
			Flags: append(rangeFlags, formatFlag("text", "Output format: text or json")),
			Action: archiveAction(func(ctx context.Context, cmd *cli.Command, archive auditUseCase.EventArchive, logger *slog.Logger) error {
				return commands.RunVerifyAuditLogs(ctx, archive, logger, os.Stdout,
					cmd.String("start-date"), cmd.String("end-date"), cmd.String("format"))
			}),
		},
		{
			Name:  "export-audit-logs",
			Usage: "Write persisted events in a time range to stdout",
			Flags: append(rangeFlags, formatFlag("json", "Export format: json or csv")),
			Action: archiveAction(func(ctx context.Context, cmd *cli.Command, archive auditUseCase.EventArchive, logger *slog.Logger) error {
				return commands.RunExportAuditLogs(ctx, archive, logger, os.Stdout,
					cmd.String("start-date"), cmd.String("end-date"), cmd.String("format"))
			}),
		},
	}
}
