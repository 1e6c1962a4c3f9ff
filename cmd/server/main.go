package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/fantasy11/internal/config"
	"github.com/iudanet/fantasy11/internal/server"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "Listen address, overrides the config")
	dbPath := flag.String("db", "", "SQLite database path, overrides the config")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	os.Exit(run(*configPath, *addr, *dbPath))
}

func run(configPath, addr, dbPath string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadDevServer(ctx, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid flags: %v\n", err)
		return 1
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("fantasy11 dev server starting",
		slog.String("version", Version),
		slog.String("db", cfg.DBPath),
		slog.Bool("seed", cfg.Seed),
	)

	srv, err := server.New(ctx, cfg, logger, Version)
	if err != nil {
		logger.Error("failed to start server", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("failed to close server", slog.Any("error", err))
		}
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		return 1
	}
	return 0
}

func printVersion() {
	fmt.Printf("fantasy11 dev server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
