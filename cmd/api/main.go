package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"handylink_backend/internal/adapters/storage"
	"handylink_backend/internal/admin"
	"handylink_backend/internal/billing"
	"handylink_backend/internal/categories"
	"handylink_backend/internal/conversations"
	"handylink_backend/internal/files"
	apphttp "handylink_backend/internal/http"
	"handylink_backend/internal/http/router"
	"handylink_backend/internal/identity"
	"handylink_backend/internal/notifications"
	"handylink_backend/internal/payments"
	paymentsvc "handylink_backend/internal/payments/service"
	"handylink_backend/internal/providers"
	"handylink_backend/internal/quotes"
	"handylink_backend/internal/requests"
	"handylink_backend/internal/reviews"
	"handylink_backend/internal/scheduler"
	"handylink_backend/migrations"
	"handylink_backend/platform/config"
	"handylink_backend/platform/db"
	"handylink_backend/platform/events"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/logger"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
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

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	expiryScheduler, closeScheduler := initExpiryScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	identityModule := identity.NewModule(pool, val)
	ident := identityModule.Service()

	notificationsModule := notifications.NewModule(pool, ident, eventBus, log)
	defer notificationsModule.Close()
	notifier := notificationsModule.Service()

	categoriesModule := categories.NewModule(pool, val)
	providersModule := providers.NewModule(pool, ident, val)
	requestsModule := requests.NewModule(pool, ident, notifier, val)
	quotesModule := quotes.NewModule(pool, ident, notifier, val)
	conversationsModule := conversations.NewModule(pool, ident, notifier, val)
	reviewsModule := reviews.NewModule(pool, ident, notifier, val)
	paymentsModule := payments.NewModule(pool, ident, notifier, cfg, expiryScheduler, val, log)
	billingModule := billing.NewModule(ident, cfg, log)
	adminModule := admin.NewModule(pool, ident, reviewsModule.Service(), cfg, val)

	modules := []apphttp.Module{
		identityModule,
		categoriesModule,
		providersModule,
		requestsModule,
		quotesModule,
		conversationsModule,
		reviewsModule,
		paymentsModule,
		billingModule,
		notificationsModule,
		adminModule,
	}

	// Object storage for avatars, portfolio photos and chat attachments
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure uploads bucket", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		log.Info("storage service initialized", "bucket", cfg.GetMinioBucketUploads())
		modules = append(modules, files.NewModule(storageSvc, ident, val))
	} else {
		log.Warn("MINIO_ENDPOINT not configured; file uploads disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:          cfg,
		Logger:          log,
		Health:          db.NewPoolAdapter(pool),
		EventBus:        eventBus,
		AuthMiddleware:  httpkit.AuthRequired(newSubjectResolver(cfg, log)),
		AdminMiddleware: identityModule.AdminMiddleware(),
		Modules:         modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// newSubjectResolver selects the identity-resolution strategy once at
// startup: verified tokens in normal operation, a caller-supplied
// subject header when demo auth is enabled.
func newSubjectResolver(cfg *config.Config, log *logger.Logger) httpkit.SubjectResolver {
	tokenResolver := httpkit.NewTokenSubjectResolver(cfg.GetAuthJWTSecret())
	if cfg.IsDemoAuthEnabled() {
		log.Warn("demo auth enabled; caller-supplied subjects are trusted")
		return httpkit.NewDemoSubjectResolver(tokenResolver)
	}
	return tokenResolver
}

func initExpiryScheduler(cfg config.SchedulerConfig, log *logger.Logger) (paymentsvc.ExpiryScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; checkout expiry sweeps disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
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

	return errors.New(name + ": " + lastErr.Error())
}
