package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/approval"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/cache"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/config"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/database"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/handlers"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/jobs"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/log"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/notify"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/queue"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/server"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	store, dbPool := openStore(ctx, cfg, logger)

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	// A nil *Producer must not leak into the interface.
	var enqueuer queue.Enqueuer
	if redisClient != nil {
		enqueuer = queue.NewProducer(redisClient, cfg.Redis.Stream, cfg.Redis.MaxLen)
	} else {
		logger.Warn().Msg("redis not configured; notifications and scheduled jobs disabled")
	}

	var audit approval.AuditSink
	if cfg.Storage.Endpoint != "" {
		archive, err := storage.NewAuditArchive(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init audit archive")
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure audit bucket failed")
		}
		audit = archive
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Dependencies{
		Store:    store,
		Cache:    redisClient,
		Notifier: notify.NewQueueNotifier(enqueuer, cfg.Mail.Enabled, logger),
		Audit:    audit,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(enqueuer, cfg.Jobs.ReaperSpec, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("scheduler start failed")
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

// openStore picks the store driver. The pool is nil for the memory driver.
func openStore(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (repository.Store, *pgxpool.Pool) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil
	}

	dbPool, err := database.Open(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open postgres")
	}
	return repository.NewPostgresStore(dbPool), dbPool
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn().Msg("scheduled jobs still running at exit")
		}
	}

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
