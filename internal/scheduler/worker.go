package scheduler

import (
	"context"
	"fmt"

	paymentsvc "handylink_backend/internal/payments/service"
	"handylink_backend/platform/config"
	"handylink_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// defaultConcurrency bounds parallel task handlers.
const defaultConcurrency = 10

// Worker consumes the background job queue.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	payments *paymentsvc.Service
	log      *logger.Logger
}

// NewWorker creates the asynq worker from configuration.
func NewWorker(cfg config.SchedulerConfig, payments *paymentsvc.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: defaultConcurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		payments: payments,
		log:      log,
	}

	mux.HandleFunc(TaskCheckoutExpiry, w.handleCheckoutExpiry)

	return w, nil
}

func (w *Worker) handleCheckoutExpiry(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCheckoutExpiryPayload(task)
	if err != nil {
		return err
	}

	requestID, err := uuid.Parse(payload.RequestID)
	if err != nil {
		return err
	}

	w.log.PaymentEvent("checkout_expiry_sweep", payload.RequestID, payload.SessionID)
	return w.payments.ResetExpired(ctx, requestID, payload.SessionID)
}

// Run starts the worker loop and blocks until the context is done.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}
