package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/qst-do/qstreport/api/swagger"
	"github.com/qst-do/qstreport/internal/acquisition"
	"github.com/qst-do/qstreport/internal/handler"
	"github.com/qst-do/qstreport/internal/middleware"
	"github.com/qst-do/qstreport/internal/repository"
	"github.com/qst-do/qstreport/internal/service"
	"github.com/qst-do/qstreport/pkg/cache"
	"github.com/qst-do/qstreport/pkg/config"
	"github.com/qst-do/qstreport/pkg/database"
	"github.com/qst-do/qstreport/pkg/jobs"
	"github.com/qst-do/qstreport/pkg/logger"
	corsmiddleware "github.com/qst-do/qstreport/pkg/middleware/cors"
	reqidmiddleware "github.com/qst-do/qstreport/pkg/middleware/requestid"
	"github.com/qst-do/qstreport/pkg/storage"
)

// @title QST Report API
// @version 1.0.0
// @description Operational event report generation for the QST entity
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, collection caching disabled", "error", err)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, true)
	}

	collector := buildCollector(cfg, metricsSvc, logr)

	fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	signer := storage.NewDownloadSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	reportRepo := repository.NewReportRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)

	exportSvc := service.NewExportService(collector, fileStore, archiveRepo, signer, cacheSvc, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
		CacheTTL:  cfg.Reports.CacheTTL,
	}, logr)

	worker := service.NewReportWorker(reportRepo, exportSvc, metricsSvc, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Reports.QueueSize,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	reportSvc := service.NewReportService(reportRepo, queue, exportSvc, validator.New(), logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: time.Hour,
	})
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)

	archiveSvc := service.NewArchiveService(archiveRepo, metricsSvc, logr, service.ArchiveServiceConfig{})
	archiveSvc.StartCleanup(ctx)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "qstreport",
	})

	router := buildRouter(cfg, logr, metricsSvc, authSvc, reportSvc, archiveSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("server shutdown failed", "error", err)
	}
}

func buildCollector(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *acquisition.Collector {
	var workOrderSources []acquisition.WorkOrderSource
	var exploitSources []acquisition.ExploitationSource

	if cfg.Siam.Enabled {
		src, err := acquisition.NewCurrentSource(portalConfig(cfg.Siam), logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to init siam source", "error", err)
		}
		workOrderSources = append(workOrderSources, src)
	}
	if cfg.SiamLegacy.Enabled {
		src, err := acquisition.NewLegacySource(portalConfig(cfg.SiamLegacy), logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to init siam legacy source", "error", err)
		}
		workOrderSources = append(workOrderSources, src)
	}
	if cfg.Epeires.Enabled {
		src, err := acquisition.NewEpeiresSource(portalConfig(cfg.Epeires), logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to init epeires source", "error", err)
		}
		exploitSources = append(exploitSources, src)
	}
	if len(workOrderSources) == 0 {
		logr.Warn("no work order source enabled, reports will be empty")
	}

	return acquisition.NewCollector(workOrderSources, exploitSources, logr).WithObserver(metrics)
}

func portalConfig(p config.PortalConfig) acquisition.PortalConfig {
	return acquisition.PortalConfig{
		BaseURL:  p.BaseURL,
		Username: p.Username,
		Password: p.Password,
		Timeout:  p.Timeout,
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, authSvc *service.AuthService, reportSvc *service.ReportService, archiveSvc *service.ArchiveService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	archiveHandler := handler.NewArchiveHandler(archiveSvc)

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	// Signed tokens authenticate downloads on their own.
	api.GET("/export/:token", reportHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.POST("/reports/generate", reportHandler.Generate)
	protected.GET("/reports/status/:id", reportHandler.Status)
	protected.GET("/archive/workorders", archiveHandler.List)
	protected.GET("/archive/workorders/:id", archiveHandler.Get)

	return r
}
