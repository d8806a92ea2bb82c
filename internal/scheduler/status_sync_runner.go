package scheduler

import (
	"context"
	"time"

	couriertransport "byabshik_backend/internal/courier/transport"
	"byabshik_backend/platform/logger"
)

const defaultStatusSyncInterval = 30 * time.Minute

// InFlightSyncer refreshes every dispatched, unsettled order.
type InFlightSyncer interface {
	SyncAll(ctx context.Context) (couriertransport.SyncAllResponse, error)
}

// StatusSyncRunner periodically pulls courier statuses for in-flight orders.
type StatusSyncRunner struct {
	syncer   InFlightSyncer
	log      *logger.Logger
	interval time.Duration
}

func NewStatusSyncRunner(syncer InFlightSyncer, log *logger.Logger, interval time.Duration) *StatusSyncRunner {
	if interval <= 0 {
		interval = defaultStatusSyncInterval
	}
	return &StatusSyncRunner{syncer: syncer, log: log, interval: interval}
}

func (r *StatusSyncRunner) Run(ctx context.Context) {
	if r == nil || r.syncer == nil {
		return
	}

	r.sync(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sync(ctx)
		}
	}
}

func (r *StatusSyncRunner) sync(ctx context.Context) {
	result, err := r.syncer.SyncAll(ctx)
	if err != nil {
		r.log.Warn("courier status sync failed", "error", err)
		return
	}

	if result.Checked > 0 {
		r.log.Info("courier status sync finished",
			"checked", result.Checked,
			"updated", result.Updated,
			"failed", result.Failed,
		)
	}
}
