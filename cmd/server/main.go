// Command server runs the Feel&Note scoring, recommendation and achievement API.
//
// @title Feel&Note Core API
// @version 1.0
// @description Scores, recommendations, achievements and aggregate counts.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/feelnote-core/config"
	"github.com/d60-Lab/feelnote-core/internal/achievement"
	"github.com/d60-Lab/feelnote-core/internal/api/handler"
	"github.com/d60-Lab/feelnote-core/internal/api/router"
	"github.com/d60-Lab/feelnote-core/internal/cache"
	"github.com/d60-Lab/feelnote-core/internal/notify"
	"github.com/d60-Lab/feelnote-core/internal/repository"
	"github.com/d60-Lab/feelnote-core/internal/service"
	"github.com/d60-Lab/feelnote-core/pkg/database"
	"github.com/d60-Lab/feelnote-core/pkg/logger"
	"github.com/d60-Lab/feelnote-core/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	shutdownSentry, err := telemetry.InitSentry(cfg.Sentry)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	catalog, err := achievement.Load(cfg.Achievements.CatalogPath)
	if err != nil {
		return err
	}

	// repositories
	scoreRepo := repository.NewScoreRepository(db)
	followRepo := repository.NewFollowRepository(db)
	recRepo := repository.NewRecommendationRepository(db)

	dispatcher := notify.NewDispatcher(repository.NewNotificationRepository(db), notify.Config{
		Buffer:      cfg.Notify.Buffer,
		MaxAttempts: cfg.Notify.MaxAttempts,
		RetryDelay:  cfg.Notify.RetryDelay,
	})
	stopDispatcher, err := dispatcher.Start(ctx)
	if err != nil {
		return err
	}

	// services
	ledger := service.NewScoreLedger(db, scoreRepo)
	var counter service.AggregateCounter = service.NewAggregateCounter(repository.NewCountRepository(db))
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer func() { _ = rdb.Close() }()
		counter = service.NewCachedCounter(counter, cache.New(rdb, "counts", cfg.Redis.CacheTTL))
	}
	recSvc := service.NewRecommendationService(db, recRepo, repository.NewUserContentRepository(db),
		service.FollowAudience{Follows: followRepo}, ledger, dispatcher)
	achSvc := service.NewAchievementService(db, catalog, repository.NewTitleRepository(db),
		repository.NewStatsRepository(db), ledger, dispatcher)
	relSvc := service.NewRelationshipService(db, followRepo, ledger, dispatcher)

	if err := achSvc.SyncCatalog(ctx); err != nil {
		return err
	}

	h := handler.NewHandler(ledger, counter, recSvc, achSvc, relSvc)
	engine := router.New(cfg, h, func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.Int("titles", catalog.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := stopDispatcher(shutdownCtx); err != nil {
		logger.Warn("notification dispatcher shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
	_ = shutdownSentry(shutdownCtx)
	return nil
}
