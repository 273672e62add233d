package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/app"
	"github.com/kapu/hololive-member-sync/internal/config"
	"github.com/kapu/hololive-member-sync/internal/util"
)

const version = "1.0.0"

type rootOptions struct {
	logLevel  string
	tablesDir string
	noBackup  bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "member-sync",
		Short:         "Reconcile Hololive member names, aliases and profile labels",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.PersistentFlags().StringVar(&opts.tablesDir, "tables-dir", "", "directory with lookup table overrides; overrides TABLES_DIR")
	root.PersistentFlags().BoolVar(&opts.noBackup, "no-backup", false, "skip backups before writing")

	root.AddCommand(
		newSyncCommand(opts),
		newLabelsCommand(opts),
		newFetchCommand(opts),
		newRestoreCommand(opts),
	)
	return root
}

// environment is what every subcommand works with. Close flushes the
// logger and releases connections.
type environment struct {
	cfg       *config.Config
	logger    *zap.Logger
	container *app.Container
	service   *app.Service
}

func (e *environment) Close() {
	e.container.Close()
	_ = e.logger.Sync()
}

// setup loads the configuration, lets mutate apply command flags to it, then
// validates it and assembles the services.
func setup(ctx context.Context, opts *rootOptions, mutate func(*config.Config)) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.tablesDir != "" {
		cfg.Tables.Dir = opts.tablesDir
	}
	if opts.noBackup {
		cfg.Backup.Enabled = false
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger, err := util.NewRotatingLogger(cfg.Logging.Level, cfg.Logging.File, util.LogRotation{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("member-sync starting",
		zap.String("version", version),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("source", cfg.Reconcile.Source),
	)

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		_ = logger.Sync()
		return nil, err
	}

	return &environment{
		cfg:       cfg,
		logger:    logger,
		container: container,
		service:   app.NewService(container),
	}, nil
}
