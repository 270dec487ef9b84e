package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/premql/lead-triage/internal/core"
	"github.com/premql/lead-triage/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	source core.MailSource,
	pipeline *core.Pipeline,
	sinks core.Sinks,
	dedupRepo core.DedupRepository,
) error {
	defer logger.Sync()

	// Cancel the batch on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	leads, err := source.FetchLeads(ctx)
	if err != nil {
		logger.Error("Failed to fetch leads", zap.Error(err))
		return err
	}
	if len(leads) == 0 {
		logger.Info("No leads to process")
		return cleanup(logger, source, sinks, dedupRepo)
	}

	result, err := pipeline.Run(ctx, leads)
	if err != nil {
		logger.Error("Batch aborted", zap.Error(err))
		return err
	}

	stats := pipeline.Dispatch(ctx, result, sinks)
	if stats.ReportFailure != nil {
		logger.Warn("Batch completed but the report was not written",
			zap.Error(stats.ReportFailure))
	}

	return cleanup(logger, source, sinks, dedupRepo)
}

func cleanup(logger *zap.Logger, source core.MailSource, sinks core.Sinks, dedupRepo core.DedupRepository) error {
	if err := source.Close(); err != nil {
		logger.Error("Failed to close mail source", zap.Error(err))
	}
	if sinks.Form != nil {
		if err := sinks.Form.Close(); err != nil {
			logger.Error("Failed to close form submitter", zap.Error(err))
		}
	}
	if sinks.Mover != nil {
		if err := sinks.Mover.Close(); err != nil {
			logger.Error("Failed to close mail mover", zap.Error(err))
		}
	}

	// Stop the dedup store's cleanup task if it runs one
	if stopper, ok := dedupRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Run complete")
	return nil
}
