// Package leads provides the lead management bounded context module: the
// reconciled contact list, bulk assignment, file import, and the moderator
// work queue.
package leads

import (
	"time"

	"byabshik_backend/internal/events"
	apphttp "byabshik_backend/internal/http"
	"byabshik_backend/internal/leads/handler"
	"byabshik_backend/internal/leads/repository"
	"byabshik_backend/internal/leads/service"
	"byabshik_backend/platform/logger"
	"byabshik_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, orders service.OrderHistory, moderators service.ModeratorDirectory, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, orders, moderators, eventBus, log, time.Now)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	admin := ctx.Admin.Group("/leads")
	admin.GET("/contacts", m.handler.ListContacts)
	admin.GET("/contacts/export", m.handler.ExportContacts)
	admin.POST("/assign", m.handler.Assign)
	admin.POST("/import", m.handler.Import)
	admin.DELETE("/:id", m.handler.Delete)

	mine := ctx.Protected.Group("/leads")
	mine.GET("/mine", m.handler.ListMine)
	mine.PATCH("/:id/status", m.handler.UpdateStatus)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
