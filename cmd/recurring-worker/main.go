// Command recurring-worker materializes due recurring expenses on a fixed
// interval. Each tick projects up to today (UTC); a run is idempotent, so
// overlapping with the API's pipeline endpoint is harmless.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finloan/internal/amqp"
	"finloan/internal/config"
	"finloan/internal/database"
	"finloan/internal/dates"
	"finloan/internal/events"
	"finloan/internal/logger"
	"finloan/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	once := flag.Bool("once", false, "run a single projection and exit")
	asOfFlag := flag.String("as-of", "", "project up to this date (YYYY-MM-DD) instead of today; implies -once")
	flag.Parse()

	if err := run(*once, *asOfFlag); err != nil {
		logger.Get().Fatalf("recurring worker: %v", err)
	}
}

func run(once bool, asOfFlag string) error {
	log := logger.Named("recurring-worker")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		client, err := amqp.Dial(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 5)
		if err != nil {
			return fmt.Errorf("failed to connect to event broker: %w", err)
		}
		defer func() { _ = client.Close() }()
		publisher = client
	}

	projection := services.NewProjectionService(dbManager.DB(), publisher, cfg.ProjectionWorkers)

	if asOfFlag != "" {
		asOf, err := dates.Parse(asOfFlag)
		if err != nil {
			return fmt.Errorf("invalid -as-of: %w", err)
		}
		return tick(ctx, projection, asOf)
	}
	if once {
		return tick(ctx, projection, dates.Today(nil))
	}

	log.Infow("starting", "interval", cfg.RecurringInterval.String(), "workers", cfg.ProjectionWorkers)
	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	for {
		if err := tick(ctx, projection, dates.Today(nil)); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Errorw("projection run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			log.Info("stopping")
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func tick(ctx context.Context, projection services.ProjectionServicer, asOf time.Time) error {
	result, err := projection.Run(ctx, asOf)
	if err != nil {
		return err
	}
	logger.Named("recurring-worker").Infow("projection run complete",
		"as_of", dates.Format(asOf),
		"definitions", result.Definitions,
		"materialized", result.Materialized,
		"skipped", result.Skipped,
		"failed", len(result.Errors),
	)
	for _, e := range result.Errors {
		logger.Named("recurring-worker").Warnw("definition failed",
			"recurring_expense_id", e.RecurringExpenseID, "code", e.Code, "message", e.Message)
	}
	return nil
}
