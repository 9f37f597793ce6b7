package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/delivery"
	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
	"github.com/groovv-ia/AdsDashOps-sub004/internal/infrastructure"
	"github.com/groovv-ia/AdsDashOps-sub004/internal/usecase"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/config"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	m := metrics.New()

	rowStore, metaCache, err := buildStores(cfg, log, m)
	if err != nil {
		log.WithError(err).Fatal("Failed to build stores")
	}

	insights := usecase.NewInsightsService(rowStore, metaCache, log, m)
	intake := usecase.NewIntakeService(rowStore, metaCache, log, m)

	handlers := delivery.NewHTTPHandlers(insights, intake, log, m)
	router := delivery.NewHTTPRouter(handlers, log, m).SetupRoutes()

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.Intake.Brokers) > 0 {
		consumer := infrastructure.NewKafkaRowConsumer(
			cfg.Intake.Brokers, cfg.Intake.Topic, cfg.Intake.GroupID,
			intake, log, m,
		)
		defer consumer.Close()
		go consumer.Run(ctx)

		log.WithFields(map[string]any{
			"topic":   cfg.Intake.Topic,
			"brokers": cfg.Intake.Brokers,
		}).Info("Kafka intake started")
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown did not complete cleanly")
	}
}

func buildStores(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (domain.RowStore, domain.MetadataCache, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return infrastructure.NewMemoryRowStore(log), infrastructure.NewMemoryMetadataCache(log), nil

	case config.BackendPostgres:
		db, err := infrastructure.SetupPostgres(cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store := infrastructure.NewPostgresStore(db, log)
		return store, store, nil

	case config.BackendREST:
		store := infrastructure.NewRESTStore(
			cfg.Store.RESTBaseURL, cfg.Store.RESTAPIKey,
			cfg.Client.RequestTimeout, cfg.Client.RateLimitPerSecond, cfg.Client.RateBurst,
			log, m,
		)
		return store, store, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
