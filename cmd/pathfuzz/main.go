package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/capsaicin/pathfuzz/internal/config"
	"github.com/capsaicin/pathfuzz/internal/logging"
	"github.com/capsaicin/pathfuzz/internal/reporting"
	"github.com/capsaicin/pathfuzz/internal/scanner"
	"github.com/capsaicin/pathfuzz/internal/ui"
)

func main() {
	cfg := config.Parse()

	if !cfg.JSON {
		ui.PrintBanner(os.Stderr)
	}

	if err := config.Validate(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	progress := ui.NewProgress(os.Stderr, !cfg.NoProgress && ui.Interactive(os.Stderr))

	logger, err := logging.New(cfg.LogLevel, progress.Writer(os.Stderr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if !cfg.JSON {
		ui.PrintConfig(os.Stderr, &cfg)
	}

	runID := uuid.NewString()

	var sink scanner.Sink
	if cfg.JSON {
		sink = reporting.NewJSONWriter(os.Stdout, runID, progress)
	} else {
		sink = reporting.NewTextWriter(os.Stdout, progress)
	}

	engine := scanner.NewEngine(&cfg,
		scanner.WithRunID(runID),
		scanner.WithLogger(logger),
		scanner.WithProgress(progress),
		scanner.WithSink(sink),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.WithField("signal", sig.String()).Warn("shutting down, waiting for in-flight requests")
		cancel()
	}()

	results, stats, err := engine.Run(ctx)
	progress.Finish()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Scan error: %s\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "[!] Scan cancelled by user")
	}

	if !cfg.JSON {
		ui.PrintSummary(os.Stderr, stats, results)
	}
}
