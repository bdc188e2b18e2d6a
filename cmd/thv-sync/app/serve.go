package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/toolhive-sync/internal/app"
	"github.com/stacklok/toolhive-sync/internal/config"
)

const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the background sync service",
		Long: `Start the background sync service and its control API.

The service requires a configuration file (--config) that specifies:
- The sync engine endpoint and the stores bound to each engine
- Where sync state is stored (file, badger, sqlite, database or memory)
- Sync scheduling: period, startup delay and retry backoff

See examples/ directory for sample configurations.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	cmd.Flags().Duration("shutdown-timeout", defaultGracefulTimeout, "Time allowed for running syncs to finish on shutdown")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	address, err := cmd.Flags().GetString("address")
	if err != nil {
		return fmt.Errorf("failed to get address flag: %w", err)
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	shutdownTimeout, err := cmd.Flags().GetDuration("shutdown-timeout")
	if err != nil {
		return fmt.Errorf("failed to get shutdown-timeout flag: %w", err)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"storage", cfg.Storage.Type,
		"endpoint", cfg.Engine.Endpoint)

	syncApp, err := app.NewSyncApp(ctx,
		app.WithConfig(cfg),
		app.WithAddress(address),
		app.WithLogger(slog.Default()),
		app.WithShutdownTimeout(shutdownTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create sync application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- syncApp.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			slog.Error("Sync application failed", "error", err)
		}
		if stopErr := syncApp.Stop(shutdownTimeout); stopErr != nil {
			slog.Error("Failed to stop sync application", "error", stopErr)
		}
		return err
	}

	return syncApp.Stop(shutdownTimeout)
}
