package scheduler

import (
	"context"
	"fmt"

	couriertransport "byabshik_backend/internal/courier/transport"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/config"
	"byabshik_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// CourierJobs is the courier work the worker runs.
type CourierJobs interface {
	BulkDispatch(ctx context.Context, orderIDs []string) couriertransport.BulkDispatchResponse
	Sync(ctx context.Context, orderID string) (couriertransport.SyncResponse, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	courier CourierJobs
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, courier CourierJobs, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		courier: courier,
		log:     log,
	}
	w.routes()

	return w, nil
}

func (w *Worker) routes() {
	w.mux.HandleFunc(TaskCourierStatusSync, w.handleStatusSync)
	w.mux.HandleFunc(TaskCourierDispatch, w.handleDispatch)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleStatusSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCourierStatusSyncPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	result, err := w.courier.Sync(ctx, payload.OrderID)
	if err != nil {
		if permanent(err) {
			w.log.Info("courier status sync skipped", "orderId", payload.OrderID, "reason", err.Error())
			return nil
		}
		return err
	}

	if result.Changed {
		w.log.Info("courier status synced", "orderId", result.OrderID, "status", result.Status)
	}
	return nil
}

func (w *Worker) handleDispatch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCourierDispatchPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	result := w.courier.BulkDispatch(ctx, payload.OrderIDs)
	w.log.Info("bulk dispatch finished",
		"requested", len(payload.OrderIDs),
		"dispatched", result.Dispatched,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return nil
}

// permanent reports errors a retry cannot fix.
func permanent(err error) bool {
	return apperr.Is(err, apperr.KindValidation) || apperr.Is(err, apperr.KindNotFound)
}
