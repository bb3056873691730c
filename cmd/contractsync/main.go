package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/honeycarbs/contractsync/internal/app"
	"github.com/honeycarbs/contractsync/internal/config"
	"github.com/honeycarbs/contractsync/internal/domain"
	"github.com/honeycarbs/contractsync/pkg/logging"
	"github.com/honeycarbs/contractsync/pkg/shutdown"
	"github.com/honeycarbs/contractsync/pkg/tracing"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	envFile  string
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "contractsync",
		Short:         "Append new contracts from the contracts API to the staging table",
		Long:          "Runs one incremental sync: token, existing codes, page walk, append. Schedule it externally for continuous operation.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "dotenv file with configuration (default .env when present)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	stopTracing, err := tracing.Init(tracing.Config{Stdout: cfg.TraceStdout})
	if err != nil {
		logger.Error("failed to initialize tracing", "err", err)
		return err
	}
	defer func() {
		if err := stopTracing(context.Background()); err != nil {
			logger.Warn("failed to flush traces", "err", err)
		}
	}()

	ctx, stop := shutdown.Watch(ctx, shutdown.Signals)
	defer stop()

	syncer, cleanup, err := app.InitializeSyncer(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sync", "err", err)
		return err
	}
	defer cleanup()

	logger.Info("starting contract sync",
		"host", cfg.API.Host,
		"table", cfg.DB.Table,
		"driver", cfg.DB.Driver,
		"page_size", cfg.API.PageSize,
	)

	res, err := syncer.Sync(ctx)
	pushMetrics(syncer, cfg.PushgatewayURL, logger)

	switch {
	case shutdown.Interrupted(ctx, err):
		logger.Info("terminated by user")
		return nil
	case err != nil:
		logger.Error("contract sync failed", "run_id", res.RunID, "err", err)
		return err
	}

	logSummary(logger, res)

	shutdown.Linger(ctx, cfg.Linger, logger)
	return nil
}

func pushMetrics(syncer *app.Syncer, url string, logger *logging.Logger) {
	if url == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := syncer.Collector.Push(ctx, url); err != nil {
		logger.Warn("failed to push metrics", "err", err)
	}
}

func logSummary(logger *logging.Logger, res domain.SyncResult) {
	keyvals := []any{
		"run_id", res.RunID,
		"authenticated", res.Authenticated,
		"known_keys", res.KnownKeys,
		"requests", res.Requests,
		"pages", res.Pages,
		"fetched", res.Fetched,
		"new", res.Admitted,
		"rejected", res.Rejected,
		"written", res.Written,
	}
	if res.FetchErr != nil {
		keyvals = append(keyvals, "fetch_err", fmt.Sprint(res.FetchErr))
	}

	logger.Info("contract sync finished", keyvals...)
}
