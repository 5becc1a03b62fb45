package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartPricing/app/echo-server/metrics"
	"smartPricing/app/echo-server/router"
	"smartPricing/business/bandit"
	"smartPricing/business/report"
	"smartPricing/internal/middleware"
	kafkaRepo "smartPricing/internal/repository/kafka"
	"smartPricing/internal/repository/memory"
	psqlRepo "smartPricing/internal/repository/postgres"
	redisRepo "smartPricing/internal/repository/redis"
	"smartPricing/internal/rest"
	"smartPricing/pkg/config"
	"smartPricing/pkg/database"
	redisdb "smartPricing/pkg/database/redis"
	"smartPricing/pkg/logger"
	pkgmetrics "smartPricing/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// dailyStore is what both services need from the rollup store.
type dailyStore interface {
	bandit.DailyStatRepository
	report.DailyStatRepository
}

type impressionStore interface {
	bandit.ImpressionRepository
	report.ImpressionRepository
}

type stores struct {
	stats       bandit.StatsRepository
	impressions impressionStore
	daily       dailyStore
	config      bandit.ConfigRepository
	checks      map[string]rest.HealthCheck
	closers     []func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting Smart Pricing", "version", cfg.App.Version, "db_driver", cfg.Database.Driver)

	loc, err := cfg.App.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", "error", err)
	}

	st, err := openStores(cfg)
	if err != nil {
		logger.Fatal("Failed to open stores", "error", err)
	}

	var publisher bandit.EventPublisher
	if cfg.Kafka.Enabled() {
		p, err := kafkaRepo.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Fatal("Failed to create kafka publisher", "error", err)
		}
		publisher = p
		st.closers = append(st.closers, p.Close)
		logger.Info("Decision events enabled", "topic", cfg.Kafka.Topic)
	}

	tuning, err := config.LoadBanditTuning(cfg.Bandit.TuningFile)
	if err != nil {
		logger.Fatal("Failed to load bandit tuning", "error", err)
	}
	banditCfg := bandit.DefaultConfig().WithTuning(tuning)
	banditCfg.Location = loc

	// Init service
	banditService := bandit.NewBanditService(
		st.stats,
		st.impressions,
		st.daily,
		st.config,
		publisher,
		bandit.NewSampler(bandit.NewTimeSource()),
		banditCfg,
	)
	reportService := report.NewReportService(st.daily, st.impressions, loc)

	// Init handler
	pricingHandler := rest.NewPricingHandler(banditService, cfg.Server.RequestTimeout)
	offerHandler := rest.NewOfferHandler(banditService, cfg.Server.RequestTimeout)
	reportHandler := rest.NewReportHandler(reportService, cfg.Server.RequestTimeout)
	adminHandler := rest.NewBanditAdminHandler(banditService, time.Minute)
	healthHandler := rest.NewHealthHandler(st.checks)

	metrics.Init(cfg.App.Version, cfg.App.Environment)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))
	e.Use(middleware.Trace())
	e.Use(pkgmetrics.Middleware())

	e.GET("/metrics", metrics.Handler())
	e.GET("/healthz", healthHandler.Health)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetPricingRoutes(api, pricingHandler)
	router.SetOfferRoutes(api, offerHandler)
	router.SetReportRoutes(api, reportHandler)
	router.SetBanditAdminRoutes(api, adminHandler, cfg.JWT.SecretKey)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i](); err != nil {
			logger.Error("Failed to close resource", "error", err)
		}
	}

	logger.Info("Server stopped")
}

// openStores picks the backing stores for the configured driver. Redis, when
// configured, takes over the daily rollups.
func openStores(cfg *config.Config) (*stores, error) {
	st := &stores{checks: map[string]rest.HealthCheck{}}

	switch cfg.Database.Driver {
	case config.DriverMemory:
		mem := memory.NewStore()
		st.stats, st.impressions, st.daily, st.config = mem, mem, mem, mem
		logger.Warn("Using in-memory store, data is lost on restart")
	default:
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := psqlRepo.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Database connected successfully", "driver", cfg.Database.Driver)

		st.stats = psqlRepo.NewBanditStatsRepository(db)
		st.impressions = psqlRepo.NewImpressionRepository(db)
		st.daily = psqlRepo.NewDailyStatRepository(db)
		st.config = psqlRepo.NewBanditConfigRepository(db)
		st.checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		st.closers = append(st.closers, func() error { return database.Close(db) })
	}

	if cfg.Redis.Enabled() {
		client, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		st.daily = redisRepo.NewDailyStatRepository(client, cfg.Redis.DailyStatTTL)
		st.checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		st.closers = append(st.closers, func() error { return redisdb.CloseRedisClient(client) })
		logger.Info("Daily rollups stored in redis", "host", cfg.Redis.RedisHost)
	}

	return st, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Driver == config.DriverSqlite {
		return database.InitSqlite(cfg)
	}
	return database.InitPostgres(cfg)
}
