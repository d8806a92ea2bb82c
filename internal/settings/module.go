// Package settings provides the settings bounded context module: the courier
// account and the brand logo.
package settings

import (
	"byabshik_backend/internal/adapters/storage"
	apphttp "byabshik_backend/internal/http"
	"byabshik_backend/internal/settings/handler"
	"byabshik_backend/internal/settings/repository"
	"byabshik_backend/internal/settings/service"
	"byabshik_backend/platform/config"
	"byabshik_backend/platform/logger"
	"byabshik_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	companyName    = "Byabshik"
	defaultMaxLogo = 5 << 20
)

// Module is the settings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the settings module. A nil store
// disables logo uploads.
func NewModule(pool *pgxpool.Pool, store *storage.BrandStore, cfg config.CourierConfig, maxLogo int64, val *validator.Validator, log *logger.Logger) *Module {
	var logos service.LogoStore
	if store != nil {
		logos = store
	}
	if maxLogo <= 0 {
		maxLogo = defaultMaxLogo
	}
	svc := service.New(repository.New(pool), logos, cfg, companyName, log)
	return &Module{
		handler: handler.New(svc, val, maxLogo),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "settings"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts settings routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	settings := ctx.Admin.Group("/settings")
	settings.GET("", m.handler.Get)
	settings.PUT("/courier", m.handler.UpdateCourier)
	settings.POST("/logo", m.handler.UploadLogo)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
