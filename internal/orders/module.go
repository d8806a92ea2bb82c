// Package orders provides the order bounded context module: placement with
// stock reservation, listing, the phone lookup, status overrides, and
// invoices.
package orders

import (
	"context"

	"byabshik_backend/internal/events"
	apphttp "byabshik_backend/internal/http"
	"byabshik_backend/internal/orders/handler"
	"byabshik_backend/internal/orders/repository"
	"byabshik_backend/internal/orders/service"
	"byabshik_backend/platform/logger"
	"byabshik_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the orders bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
	log     *logger.Logger
}

// NewModule creates and initializes the orders module with all its dependencies.
func NewModule(pool *pgxpool.Pool, leads service.LeadLookup, branding service.Branding, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leads, branding, eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "orders"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the order store for the courier module.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts orders routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	orders := ctx.Protected.Group("/orders")
	orders.POST("", m.handler.Create)
	orders.GET("", m.handler.List)
	orders.GET("/lookup", m.handler.Lookup)
	orders.GET("/:id", m.handler.Get)
	orders.GET("/:id/invoice.pdf", m.handler.Invoice)

	admin := ctx.Admin.Group("/orders")
	admin.PATCH("/status", m.handler.UpdateStatusMany)
	admin.PATCH("/:id/status", m.handler.UpdateStatus)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

// RegisterHandlers writes every status transition to the audit log.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.OrderStatusChanged{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		ev, ok := e.(events.OrderStatusChanged)
		if !ok {
			return nil
		}
		m.log.Info("order status changed",
			"orderId", ev.OrderID,
			"from", ev.OldStatus,
			"to", ev.NewStatus,
			"source", ev.Source,
		)
		return nil
	}))
}
