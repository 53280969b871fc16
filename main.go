package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/egannguyen/inventory-ledger/internal/cache/redis"
	"github.com/egannguyen/inventory-ledger/internal/config"
	httpDelivery "github.com/egannguyen/inventory-ledger/internal/delivery/http"
	"github.com/egannguyen/inventory-ledger/internal/messaging"
	"github.com/egannguyen/inventory-ledger/internal/messaging/kafka"
	"github.com/egannguyen/inventory-ledger/internal/messaging/watermillpub"
	"github.com/egannguyen/inventory-ledger/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	slog.SetLogLoggerLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Storage ---
	store, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}
	defer store.close()

	// --- Kafka ---
	publisher, err := newPublisher(cfg)
	if err != nil {
		slog.Error("Failed to create event publisher", "err", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// --- Cache ---
	reportCache := service.NoCache()
	if cfg.RedisAddr != "" {
		rc, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			slog.Error("Failed to connect to redis", "err", err)
			os.Exit(1)
		}
		defer rc.Close()
		reportCache = rc
	}

	// --- Services ---
	productSvc := service.NewProductService(store.products, reportCache)
	saleSvc := service.NewSaleService(store.products, store.sales, publisher, reportCache)
	reportSvc := service.NewDeadInventoryService(store.products, reportCache, cfg.DeadInventoryThresholdDays)

	if cfg.SeedProducts {
		if err := productSvc.SeedProducts(ctx); err != nil {
			slog.Error("Failed to seed products", "err", err)
			os.Exit(1)
		}
	}

	// --- HTTP API ---
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := httpDelivery.NewHandler(productSvc, saleSvc, reportSvc)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpDelivery.NewRouter(handler, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "err", err)
	}
}

// newPublisher picks the SaleRecorded transport. Without brokers events are dropped.
func newPublisher(cfg *config.Config) (messaging.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		slog.Info("No Kafka brokers configured, sale events are not published")
		return messaging.NewNopPublisher(), nil
	}
	if cfg.EventPublisher == config.PublisherWatermill {
		return watermillpub.NewKafkaPublisher(cfg.KafkaBrokers, cfg.SalesTopic)
	}
	return kafka.NewPublisher(cfg.KafkaBrokers, cfg.SalesTopic), nil
}
