package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/ramfs/internal/logger"
	"github.com/marmos91/ramfs/pkg/api"
	"github.com/marmos91/ramfs/pkg/config"
	"github.com/marmos91/ramfs/pkg/metrics"
	"github.com/marmos91/ramfs/pkg/ramfs"
	"github.com/marmos91/ramfs/pkg/vfs"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ramfs daemon",
	Long: `Start the ramfs daemon with the specified configuration.

The daemon registers the in-memory filesystem types, mounts the
filesystems listed in the configuration, and serves the admin API
until interrupted.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/ramfs/config.yaml.

Examples:
  # Start with default config location
  ramfs start

  # Start with custom config file
  ramfs start --config /etc/ramfs/config.yaml

  # Start with environment variable overrides
  RAMFS_LOGGING_LEVEL=DEBUG ramfs start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("ramfs daemon starting", "version", Version)
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Metrics first, so every component created below reports into the
	// registry.
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled, scrape endpoint at /metrics")
	}
	vfs.DefaultRegistry.SetMetrics(metrics.NewMountMetrics())
	vfs.SetNodeMetrics(metrics.NewNodeMetrics())

	if err := ramfs.Init(metrics.NewPoolMetrics()); err != nil {
		return fmt.Errorf("failed to register filesystem types: %w", err)
	}
	defer ramfs.Teardown()

	// Mount the filesystems listed in the configuration.
	for _, fs := range cfg.Filesystems {
		m, err := vfs.MountFilesystem(fs.Type, fs.Options)
		if err != nil {
			vfs.DefaultRegistry.UnmountAll()
			return fmt.Errorf("failed to mount %q: %w", fs.Name, err)
		}
		logger.Info("startup mount ready",
			logger.Name(fs.Name),
			logger.FSType(fs.Type),
			logger.MountID(m.ID.String()))
	}
	defer vfs.DefaultRegistry.UnmountAll()

	// Pick up logging changes when the config file is rewritten.
	if configSource := getConfigSource(GetConfigFile()); configSource != "defaults" {
		err := config.Watch(GetConfigFile(), func(updated *config.Config) {
			logger.SetLevel(updated.Logging.Level)
			logger.SetFormat(updated.Logging.Format)
			logger.Info("logging configuration reloaded",
				"level", updated.Logging.Level,
				"format", updated.Logging.Format)
		})
		if err != nil {
			logger.Warn("config watch unavailable", logger.Err(err))
		}
	}

	// Start the admin API server.
	apiErrChan := make(chan error, 1)
	if cfg.API.IsEnabled() {
		server := api.NewServer(cfg.API, vfs.DefaultRegistry)
		go func() {
			if err := server.Start(ctx); err != nil {
				apiErrChan <- err
			}
		}()
	} else {
		logger.Info("API server disabled by configuration")
	}

	// Wait for a shutdown signal or an API server failure.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err := <-apiErrChan:
		logger.Error("API server failed", logger.Err(err))
		return err
	}

	// Cancel the context so the API server drains, then let the
	// deferred unmount and teardown discard all in-memory state.
	cancel()
	logger.Info("ramfs daemon stopping")
	return nil
}
