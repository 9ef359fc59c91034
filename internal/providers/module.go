// Package providers provides the public provider directory and the
// provider's own profile management.
package providers

import (
	apphttp "handylink_backend/internal/http"
	identitysvc "handylink_backend/internal/identity/service"
	"handylink_backend/internal/providers/handler"
	"handylink_backend/internal/providers/repository"
	"handylink_backend/internal/providers/service"
	reviewrepo "handylink_backend/internal/reviews/repository"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the providers bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the providers module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, ident *identitysvc.Service, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, reviewrepo.New(pool), ident)
	h := handler.New(svc, val)

	return &Module{service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "providers"
}

// RegisterRoutes mounts the provider routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1)
	group := ctx.Protected.Group("/provider-profile")
	m.handler.RegisterRoutes(group)
}

// Service exposes the providers service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}
