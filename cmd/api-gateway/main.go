package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

// @title SMA Timetable API
// @version 0.2.0
// @description Constraint and feasibility validation for school timetable generation
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.NewPostgres(connectCtx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(connectCtx, db); err != nil {
		return err
	}

	readiness := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Feasibility.CacheEnabled {
		client, err := cache.NewRedis(connectCtx, cfg.Redis)
		if err != nil {
			logr.Warn("report cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			readiness["redis"] = repo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Feasibility.CacheTTL, logr, cfg.Feasibility.CacheEnabled)

	validate := validator.New()

	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	settingsRepo := repository.NewScheduleSettingsRepository(db)

	var feasibilitySvc *service.FeasibilityService
	revalidation := jobs.NewQueue("feasibility-revalidate", func(ctx context.Context, job jobs.Job) error {
		return feasibilitySvc.HandleRevalidation(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Feasibility.RevalidateWorkers,
		MaxRetries: cfg.Feasibility.RevalidateRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})

	timingSvc := service.NewSchoolTimingService(configRepo, cacheSvc, validate, logr, cfg.Timing)
	settingsSvc := service.NewScheduleSettingsService(settingsRepo, subjectRepo, teacherRepo, cacheSvc, revalidation, validate, logr)
	feasibilitySvc = service.NewFeasibilityService(subjectRepo, teacherRepo, classRepo, settingsSvc, timingSvc, cacheSvc, metricsSvc, validate, logr,
		service.FeasibilityServiceConfig{
			CacheTTL:            cfg.Feasibility.CacheTTL,
			EdgeCapacityDefault: cfg.Feasibility.EdgeCapacityDefault,
			DensityThreshold:    cfg.Feasibility.DensityThreshold,
		})
	exportStore, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		return err
	}
	archiveSvc := service.NewReportArchiveService(feasibilitySvc, exportStore,
		storage.NewSignedURLSigner(cfg.Export.SigningSecret, cfg.Export.LinkTTL),
		service.ReportArchiveConfig{
			DownloadPath:    cfg.APIPrefix + "/feasibility/downloads",
			ResultTTL:       cfg.Export.LinkTTL,
			CleanupInterval: cfg.Export.CleanupInterval,
		}, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	revalidation.Start(ctx)
	defer revalidation.Stop()
	archiveSvc.StartCleanup(ctx)

	router := newRouter(routerDeps{
		Config:      cfg,
		Logger:      logr,
		Metrics:     metricsSvc,
		Tokens:      authSvc,
		Timing:      handler.NewSchoolTimingHandler(timingSvc),
		Settings:    handler.NewScheduleSettingsHandler(settingsSvc),
		Feasibility: handler.NewFeasibilityHandler(feasibilitySvc),
		Archive:     handler.NewReportArchiveHandler(archiveSvc),
		System:      handler.NewMetricsHandler(metricsSvc, readiness),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logr.Info("shutdown requested")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
		return server.Close()
	}
	logr.Info("server stopped")
	return nil
}
