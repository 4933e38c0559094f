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

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/costmatrix/analytics-engine/api/swagger"
	"github.com/costmatrix/analytics-engine/internal/handler"
	"github.com/costmatrix/analytics-engine/internal/middleware"
	"github.com/costmatrix/analytics-engine/internal/repository"
	"github.com/costmatrix/analytics-engine/internal/service"
	"github.com/costmatrix/analytics-engine/pkg/cache"
	"github.com/costmatrix/analytics-engine/pkg/config"
	"github.com/costmatrix/analytics-engine/pkg/database"
	"github.com/costmatrix/analytics-engine/pkg/jobs"
	"github.com/costmatrix/analytics-engine/pkg/logger"
	corsmiddleware "github.com/costmatrix/analytics-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/costmatrix/analytics-engine/pkg/middleware/requestid"
	"github.com/costmatrix/analytics-engine/pkg/storage"
)

// @title Travel & Attendance Analytics Engine
// @version 1.0.0
// @description Normalises monthly attendance/travel workbooks and serves cross-sheet KPIs, anomaly detection, and multi-month aggregation.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to open database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	store, err := repository.New(db, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init store", "error", err)
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running with caching disabled", "error", err)
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(nil, logr), metrics, cfg.Analytics.CacheTTL, logr, false)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled)
	}

	uploadStorage, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	ingestor := service.NewIngestorService(store, uploadStorage, cacheSvc, logr, jobs.QueueConfig{
		Workers:    4,
		BufferSize: 32,
		MaxRetries: 2,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ingestor.Start(ctx)
	defer ingestor.Stop()

	aggregator := service.NewAggregatorService(store, cacheSvc, metrics, logr)
	exportSvc := service.NewExportService()

	ingestorHandler := handler.NewIngestorHandler(ingestor, store, uploadStorage, cacheSvc, cfg.MaxUploadSizeMB)
	aggregatorHandler := handler.NewAggregatorHandler(aggregator, exportSvc, store)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/upload", ingestorHandler.Upload)
		api.GET("/progress/:task_id", ingestorHandler.Progress)
		api.GET("/months", ingestorHandler.Months)
		api.DELETE("/months/:m", ingestorHandler.DeleteMonth)

		api.POST("/analyze", aggregatorHandler.Analyze)
		api.GET("/booking-behavior", aggregatorHandler.BookingBehavior)
		api.GET("/projects", aggregatorHandler.Projects)
		api.GET("/projects/:code/orders", aggregatorHandler.ProjectOrders)
		api.GET("/departments/hierarchy", aggregatorHandler.DepartmentHierarchy)
		api.GET("/departments/list", aggregatorHandler.DepartmentList)
		api.GET("/departments/details", aggregatorHandler.DepartmentDetails)
		api.GET("/departments/level1/statistics", aggregatorHandler.Level1Statistics)
		api.GET("/departments/level2/statistics", aggregatorHandler.Level2Statistics)
		api.GET("/anomalies", aggregatorHandler.Anomalies)
		api.GET("/system/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown error", "error", err)
	}
}
