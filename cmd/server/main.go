package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"stockledger/internal/config"
	"stockledger/internal/events"
	"stockledger/internal/infrastructure/cache"
	"stockledger/internal/infrastructure/kafka"
	"stockledger/internal/infrastructure/logger"
	"stockledger/internal/infrastructure/metrics"
	"stockledger/internal/infrastructure/mysql"
	"stockledger/internal/ledger"
	"stockledger/internal/product"
	productusecase "stockledger/internal/product/usecase"
	"stockledger/internal/report"
	reportcache "stockledger/internal/report/cache"
	reportservice "stockledger/internal/report/service"
	"stockledger/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load("internal/config/config.yaml")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, "stockledger")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.Auth.JWTSecret == "" {
		zapLogger.Fatal("auth.jwt_secret must be set")
	}

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if err := mysql.Migrate(context.Background(), db); err != nil {
		zapLogger.Fatal("migrating schema", zap.Error(err))
	}

	m := metrics.New()

	var (
		sinks             []events.Sink
		reportCache       reportservice.Cache
		reportInvalidator productusecase.ReportInvalidator
	)

	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			zapLogger.Fatal("connecting to redis", zap.Error(err))
		}
		defer client.Close()

		rc := reportcache.NewRedisCache(client, cfg.Redis.ReportCacheTTL)
		reportCache = rc
		reportInvalidator = rc
		sinks = append(sinks, rc)
		zapLogger.Info("report cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.Kafka.Enabled {
		publisher := kafka.NewPublisher(cfg.Kafka, zapLogger)
		defer publisher.Close()
		sinks = append(sinks, publisher)
		zapLogger.Info("stock events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	notifier := events.NewFanout(m, zapLogger, sinks...)

	ledgerModule := ledger.NewModule(db, cfg, m, notifier, zapLogger)
	productCtrl := product.NewModule(db, cfg, ledgerModule.Engine, notifier, reportInvalidator, zapLogger)
	reportCtrl := report.NewModule(db, reportCache, m, zapLogger)

	router := server.NewRouter(server.RouterConfig{
		Inputs:         ledgerModule.Controller,
		Products:       productCtrl,
		Reports:        reportCtrl,
		Metrics:        m,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.Server.RateLimit,
		Health:         db.PingContext,
		Logger:         zapLogger,
	})

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
