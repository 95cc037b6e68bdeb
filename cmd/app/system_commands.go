package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/cmd/app/commands"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/app"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/config"
)

func getSystemCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "Start the access control service with periodic cleanup and the metrics server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				logger := container.Logger()
				defer closeContainer(container, logger)

				logger.Info("starting service", slog.String("version", version), slog.String("env", cfg.AppEnv))

				controller, err := container.AccessController()
				if err != nil {
					return err
				}
				vault, err := container.Vault()
				if err != nil {
					return err
				}
				pipeline, err := container.AuditPipeline()
				if err != nil {
					return err
				}

				var server commands.OpsServer
				metricsServer, err := container.MetricsServer()
				if err != nil {
					return err
				}
				if metricsServer != nil {
					server = metricsServer
				}

				tasks := []commands.MaintenanceTask{
					{Name: "access_controller", Run: func(ctx context.Context) (int, error) {
						result, err := controller.Cleanup(ctx)
						if err != nil {
							return 0, err
						}
						return result.SessionsRemoved + result.LockoutsRemoved + result.LimitersRemoved, nil
					}},
					{Name: "credential_vault", Run: vault.Cleanup},
					{Name: "audit_pipeline", Run: func(ctx context.Context) (int, error) {
						result, err := pipeline.Cleanup(ctx)
						if err != nil {
							return 0, err
						}
						return result.HistoryPruned + result.AlertsPruned + result.CountersPruned, nil
					}},
				}

				return commands.RunServer(ctx, logger, server, cfg.CleanupInterval, cfg.DBConnMaxLifetime, tasks)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations for the audit event store",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer closeContainer(container, container.Logger())

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}

// closeContainer releases every resource in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}
