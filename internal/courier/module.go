// Package courier provides the courier bounded context module: dispatching
// orders to Steadfast, status sync, and the inbound webhook.
package courier

import (
	"context"
	"time"

	"byabshik_backend/internal/courier/handler"
	"byabshik_backend/internal/courier/service"
	"byabshik_backend/internal/courier/steadfast"
	"byabshik_backend/internal/events"
	apphttp "byabshik_backend/internal/http"
	"byabshik_backend/platform/config"
	"byabshik_backend/platform/httpkit"
	"byabshik_backend/platform/logger"
	"byabshik_backend/platform/validator"
)

// Config is what the courier module reads from the environment.
type Config interface {
	config.CourierConfig
	config.CourierSyncConfig
}

// Module is the courier bounded context module implementing http.Module.
type Module struct {
	handler      *handler.Handler
	service      *service.Service
	webhookToken string
}

// NewModule creates and initializes the courier module with all its dependencies.
func NewModule(orders service.OrderStore, creds service.CredentialSource, cfg Config, locker service.Locker, enqueuer service.Enqueuer, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	client := steadfast.NewClient(cfg.GetCourierTimeout(), log)
	svc := service.New(orders, client, creds, eventBus, log, service.Options{
		Locker:          locker,
		Enqueuer:        enqueuer,
		SyncConcurrency: cfg.GetCourierSyncConcurrency(),
	})
	return &Module{
		handler:      handler.New(svc, val),
		service:      svc,
		webhookToken: cfg.GetCourierWebhookToken(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "courier"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts courier routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	admin := ctx.Admin
	admin.POST("/orders/dispatch", m.handler.BulkDispatch)
	admin.POST("/orders/:id/dispatch", m.handler.Dispatch)
	admin.POST("/orders/:id/sync", m.handler.Sync)
	admin.POST("/courier/sync", m.handler.SyncAll)
	admin.POST("/settings/courier/test", m.handler.TestConnection)

	ctx.V1.POST("/webhooks/steadfast", httpkit.BearerToken(m.webhookToken), m.handler.Webhook)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

// StatusSyncScheduler queues a one-off courier status check.
type StatusSyncScheduler interface {
	ScheduleStatusSync(ctx context.Context, orderID string, delay time.Duration) error
}

// RegisterHandlers queues a follow-up status check for every order that
// reached the real courier. Simulated consignments are skipped.
func (m *Module) RegisterHandlers(bus events.Bus, syncs StatusSyncScheduler, delay time.Duration) {
	bus.Subscribe(events.OrderDispatched{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		ev, ok := e.(events.OrderDispatched)
		if !ok || ev.Simulated {
			return nil
		}
		return syncs.ScheduleStatusSync(ctx, ev.OrderID, delay)
	}))
}
