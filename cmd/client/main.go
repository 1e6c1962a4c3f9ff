package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/fantasy11/internal/client/cli"
	"github.com/iudanet/fantasy11/internal/client/iocli"
	"github.com/iudanet/fantasy11/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdio := iocli.NewStdio()

	var app *cli.Cli
	defer func() {
		if app == nil {
			return
		}
		if err := app.Close(); err != nil {
			slog.Error("failed to close client", slog.Any("error", err))
		}
	}()

	build := func(ctx context.Context, flags cli.Flags) (*cli.Cli, error) {
		cfg, err := config.Load(ctx, flags.ConfigPath)
		if err != nil {
			return nil, err
		}
		// Флаги командной строки имеют наивысший приоритет
		if flags.ServerURL != "" {
			cfg.ServerURL = flags.ServerURL
		}
		if flags.DBPath != "" {
			cfg.DBPath = flags.DBPath
		}
		if flags.LogLevel != "" {
			cfg.LogLevel = flags.LogLevel
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}

		level, err := config.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		app, err = cli.Bootstrap(ctx, cfg, logger, stdio)
		return app, err
	}

	root := cli.NewRootCommand(build, stdio, cli.BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.Message(err))
		return 1
	}
	return 0
}
