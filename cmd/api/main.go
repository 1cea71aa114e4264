package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finloan/internal/amqp"
	"finloan/internal/config"
	"finloan/internal/database"
	"finloan/internal/events"
	"finloan/internal/logger"
	"finloan/internal/router"
	"finloan/internal/validator"
)

// @title           Finloan API
// @version         1.0
// @description     Expense tracking, monthly category budgets and recurring expense projection.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey PipelineKey
// @in header
// @name X-API-Key

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, closePublisher, err := newPublisher(ctx, appConfig)
	if err != nil {
		return err
	}
	defer closePublisher()

	validator.Register()
	engine := router.New(router.NewDeps(dbManager.DB(), publisher, appConfig))

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Finloan API on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher connects to the event broker, or returns a no-op publisher
// when AMQP_URL is unset.
func newPublisher(ctx context.Context, cfg *config.Config) (events.Publisher, func(), error) {
	if cfg.AMQPURL == "" {
		logger.Get().Info("AMQP_URL not set, domain events are discarded")
		return events.Noop{}, func() {}, nil
	}

	client, err := amqp.Dial(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 5)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to event broker: %w", err)
	}
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Get().Warnf("AMQP close error: %v", err)
		}
	}, nil
}
