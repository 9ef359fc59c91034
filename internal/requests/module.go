// Package requests provides the service-request domain module: the
// request lifecycle state machine and role-scoped listing.
package requests

import (
	apphttp "handylink_backend/internal/http"
	identitysvc "handylink_backend/internal/identity/service"
	notifsvc "handylink_backend/internal/notifications/service"
	providerrepo "handylink_backend/internal/providers/repository"
	quoterepo "handylink_backend/internal/quotes/repository"
	"handylink_backend/internal/requests/handler"
	"handylink_backend/internal/requests/repository"
	"handylink_backend/internal/requests/service"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the requests bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the requests module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, ident *identitysvc.Service, notifier *notifsvc.Service, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(pool, repo, quoterepo.New(pool), providerrepo.New(pool), ident, notifier)
	h := handler.New(svc, val)

	return &Module{service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "requests"
}

// RegisterRoutes mounts the request routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/requests")
	m.handler.RegisterRoutes(group)
}

// Service exposes the requests service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}
