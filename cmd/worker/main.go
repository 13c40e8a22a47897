package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mizan-erp/mizan/internal/app"
	"github.com/mizan-erp/mizan/internal/coa"
	"github.com/mizan-erp/mizan/internal/interunit"
	"github.com/mizan-erp/mizan/internal/observability"
	"github.com/mizan-erp/mizan/internal/org"
	"github.com/mizan-erp/mizan/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	entityRepo := org.NewRepository(pool)
	accountRepo := coa.NewRepository(pool)
	transferRepo := interunit.NewRepository(pool)

	entities, err := entityRepo.List(ctx)
	if err != nil {
		logger.Error("load entities", slog.Any("error", err))
		os.Exit(1)
	}
	store := org.NewStore(entities)

	sequence := interunit.NewSequence(redisClient)
	transferService := interunit.NewService(transferRepo, accountRepo, store, sequence, logger, cfg.BaseCurrency)

	integrityJob := jobs.NewIntercompanyIntegrityJob(transferService, entityRepo, logger, observability.NewMetrics())

	integrityTask, err := jobs.NewIntercompanyIntegrityTask("all")
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskIntercompanyIntegrity, Handler: integrityJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.IntegrityCron, Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
