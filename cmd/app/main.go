// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// Build-time variables, set via -ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
	commitSHA = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "ZOE Solar access control, credential vault and audit service",
		Version: version + " (" + commitSHA + ", " + buildDate + ")",
	}

	cmd.Commands = append(cmd.Commands, getSystemCommands()...)
	cmd.Commands = append(cmd.Commands, getKeyCommands()...)
	cmd.Commands = append(cmd.Commands, getAuditCommands()...)

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
