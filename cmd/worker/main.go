package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"handylink_backend/internal/identity"
	"handylink_backend/internal/notifications"
	"handylink_backend/internal/payments"
	"handylink_backend/internal/scheduler"
	"handylink_backend/platform/config"
	"handylink_backend/platform/db"
	"handylink_backend/platform/events"
	"handylink_backend/platform/logger"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The worker consumes the background job queue: checkout-expiry sweeps
// scheduled by the API process. It shares the API's module wiring but
// registers no HTTP routes.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = db.NewPool(ctx, cfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt*attempt) * 2 * time.Second):
		}
	}
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	identityModule := identity.NewModule(pool, val)
	ident := identityModule.Service()

	notificationsModule := notifications.NewModule(pool, ident, eventBus, log)
	defer notificationsModule.Close()

	// The worker never schedules new expiries, so no scheduler client.
	paymentsModule := payments.NewModule(pool, ident, notificationsModule.Service(), cfg, nil, val, log)

	worker, err := scheduler.NewWorker(cfg, paymentsModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	log.Info("worker listening", "queue", cfg.GetAsynqQueueName())
	if err := worker.Run(ctx); err != nil {
		log.Error("worker error", "error", err)
		panic("worker error: " + err.Error())
	}
	log.Info("worker stopped")
}
