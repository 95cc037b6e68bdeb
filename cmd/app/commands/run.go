package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// OpsServer is the operational HTTP server serving health, readiness and metrics.
type OpsServer interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// MaintenanceTask is a periodic cleanup step. Run returns how many items it reclaimed.
type MaintenanceTask struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// RunServer starts the ops server when one is configured and runs every maintenance
// task each interval until SIGINT, SIGTERM or ctx cancellation. A failing task is
// logged and retried on the next tick.
func RunServer(
	ctx context.Context,
	logger *slog.Logger,
	server OpsServer,
	interval time.Duration,
	shutdownTimeout time.Duration,
	tasks []MaintenanceTask,
) error {
	if interval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got: %s", interval)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 1)
	if server != nil {
		go func() {
			if err := server.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	logger.Info("service started",
		slog.Duration("cleanup_interval", interval),
		slog.Int("maintenance_tasks", len(tasks)),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received")
			if server == nil {
				return nil
			}
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shutdown metrics server: %w", err)
			}
			return nil
		case err := <-serverErr:
			return err
		case <-ticker.C:
			runMaintenance(ctx, logger, tasks)
		}
	}
}

func runMaintenance(ctx context.Context, logger *slog.Logger, tasks []MaintenanceTask) {
	for _, task := range tasks {
		removed, err := task.Run(ctx)
		if err != nil {
			logger.Error("maintenance task failed",
				slog.String("task", task.Name),
				slog.Any("error", err),
			)
			continue
		}
		if removed > 0 {
			logger.Info("maintenance task completed",
				slog.String("task", task.Name),
				slog.Int("removed", removed),
			)
		}
	}
}
