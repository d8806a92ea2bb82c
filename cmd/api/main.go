package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"byabshik_backend/internal/adapters"
	"byabshik_backend/internal/adapters/storage"
	"byabshik_backend/internal/auth"
	"byabshik_backend/internal/courier"
	courierservice "byabshik_backend/internal/courier/service"
	"byabshik_backend/internal/events"
	apphttp "byabshik_backend/internal/http"
	"byabshik_backend/internal/http/router"
	"byabshik_backend/internal/leads"
	leadrepo "byabshik_backend/internal/leads/repository"
	"byabshik_backend/internal/moderators"
	"byabshik_backend/internal/orders"
	"byabshik_backend/internal/products"
	"byabshik_backend/internal/scheduler"
	"byabshik_backend/internal/settings"
	"byabshik_backend/platform/config"
	"byabshik_backend/platform/db"
	"byabshik_backend/platform/logger"
	"byabshik_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// statusFollowUp is how long after a real dispatch the courier is asked
// for the first status update.
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
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, cfg.MigrationsDir)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	brandStore := initBrandStore(ctx, cfg, log)

	var (
		locker   courierservice.Locker
		enqueuer courierservice.Enqueuer
		syncs    courier.StatusSyncScheduler
	)
	if cfg.GetRedisURL() != "" {
		rc, err := scheduler.NewRedisClient(cfg)
		if err != nil {
			log.Error("failed to initialize redis client", "error", err)
			panic("failed to initialize redis client: " + err.Error())
		}
		defer func() { _ = rc.Close() }()
		locker = courierservice.NewRedisLocker(rc)

		jobs, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize task client", "error", err)
			panic("failed to initialize task client: " + err.Error())
		}
		defer func() { _ = jobs.Close() }()
		enqueuer = jobs
		syncs = jobs
	} else {
		log.Warn("REDIS_URL not configured; dispatch lock is local and background dispatch is disabled")
	}

	// ========================================================================
	// Domain Modules
	// ========================================================================

	settingsModule := settings.NewModule(pool, brandStore, cfg, cfg.GetMinIOMaxFileSize(), val, log)
	moderatorsModule := moderators.NewModule(pool, val, log)
	authModule := auth.NewModule(pool, cfg, val, log)
	productsModule := products.NewModule(pool, val, log)

	// orders reads leads through the repository so the two modules can be
	// built in sequence.
	ordersModule := orders.NewModule(pool, adapters.NewLeadContacts(leadrepo.New(pool)), settingsModule.Service(), eventBus, val, log)
	leadsModule := leads.NewModule(pool, adapters.NewOrderContacts(ordersModule.Service()), moderatorsModule.Service(), eventBus, val, log)
	courierModule := courier.NewModule(ordersModule.Repository(), settingsModule.Service(), cfg, locker, enqueuer, eventBus, val, log)

	ordersModule.RegisterHandlers(eventBus)
	if syncs != nil {
		courierModule.RegisterHandlers(eventBus, syncs, statusFollowUp)
	}

	created, err := moderatorsModule.Service().EnsureAdmin(ctx, cfg)
	if err != nil {
		log.Error("failed to bootstrap admin account", "error", err)
		panic("failed to bootstrap admin account: " + err.Error())
	}
	if created {
		log.Info("bootstrap admin account created", "email", cfg.GetAdminEmail())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			authModule,
			moderatorsModule,
			productsModule,
			ordersModule,
			courierModule,
			leadsModule,
			settingsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initBrandStore connects to MinIO when configured. Logo uploads are
// disabled otherwise.
func initBrandStore(ctx context.Context, cfg *config.Config, log *logger.Logger) *storage.BrandStore {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; logo uploads disabled")
		return nil
	}
	store, err := storage.NewBrandStore(cfg)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		panic("failed to initialize storage: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure branding bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucket(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketBranding())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	return store
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
