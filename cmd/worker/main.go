package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/cache"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/config"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/database"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/log"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/queue"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/session"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("service", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	if client == nil {
		logger.Fatal().Msg("worker needs redis.addr")
	}
	defer client.Close()

	// Session reaping needs the shared database; with the memory driver the
	// sessions live in the API process and the task is logged and dropped.
	var reaper tasks.SessionReaper
	if cfg.Store.Driver == config.StoreDriverPostgres {
		pgCfg := cfg.Postgres
		pgCfg.Migrate = false
		pool, err := database.Open(ctx, pgCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		defer pool.Close()
		reaper = session.NewRegistry(repository.NewPostgresStore(pool), session.Options{
			TTL:         cfg.Security.SessionTTL,
			MaxSessions: cfg.Security.MaxSessions,
		}, logger)
	}

	processor := tasks.NewProcessor(tasks.LogMailer{Logger: logger}, reaper, cfg.Mail.From, cfg.Mail.BaseURL, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Queues.ClaimInterval,
		logger,
		processor,
	)

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
