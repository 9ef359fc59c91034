// Package categories provides the public category catalog and its
// admin curation surface.
package categories

import (
	"handylink_backend/internal/categories/handler"
	"handylink_backend/internal/categories/repository"
	"handylink_backend/internal/categories/service"
	apphttp "handylink_backend/internal/http"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the categories bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the categories module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(pool, repo)
	h := handler.New(svc, val)

	return &Module{service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "categories"
}

// RegisterRoutes mounts the category routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1)
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

// Service exposes the categories service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}
