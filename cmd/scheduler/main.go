package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"byabshik_backend/internal/courier"
	courierservice "byabshik_backend/internal/courier/service"
	"byabshik_backend/internal/events"
	"byabshik_backend/internal/orders"
	"byabshik_backend/internal/scheduler"
	"byabshik_backend/internal/settings"
	"byabshik_backend/platform/config"
	"byabshik_backend/platform/db"
	"byabshik_backend/platform/logger"
	"byabshik_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const statusFollowUp = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.NewWithFile(cfg.Env, logger.FileOptions{
		Path:       cfg.GetLogFile(),
		MaxSizeMB:  cfg.GetLogMaxSizeMB(),
		MaxBackups: cfg.GetLogMaxBackups(),
		MaxAgeDays: cfg.GetLogMaxAgeDays(),
		Compress:   cfg.GetLogCompress(),
	})
	defer func() { _ = log.Close() }()
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	rc, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		panic("failed to initialize redis client: " + err.Error())
	}
	defer func() { _ = rc.Close() }()

	jobs, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		panic("failed to initialize task client: " + err.Error())
	}
	defer func() { _ = jobs.Close() }()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// The worker dispatches inline, so it gets no enqueuer of its own.
	settingsModule := settings.NewModule(pool, nil, cfg, 0, val, log)
	ordersModule := orders.NewModule(pool, nil, settingsModule.Service(), eventBus, val, log)
	courierModule := courier.NewModule(ordersModule.Repository(), settingsModule.Service(), cfg, courierservice.NewRedisLocker(rc), nil, eventBus, val, log)

	ordersModule.RegisterHandlers(eventBus)
	courierModule.RegisterHandlers(eventBus, jobs, statusFollowUp)

	courierSvc := courierModule.Service()

	runner := scheduler.NewStatusSyncRunner(courierSvc, log, cfg.GetCourierSyncInterval())
	go runner.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, courierSvc, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
