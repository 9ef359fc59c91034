// Package quotes provides the quote domain module: submission,
// accept/decline, and the provider's own quote list.
package quotes

import (
	apphttp "handylink_backend/internal/http"
	identitysvc "handylink_backend/internal/identity/service"
	notifsvc "handylink_backend/internal/notifications/service"
	"handylink_backend/internal/quotes/handler"
	"handylink_backend/internal/quotes/repository"
	"handylink_backend/internal/quotes/service"
	requestrepo "handylink_backend/internal/requests/repository"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the quotes bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the quotes module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, ident *identitysvc.Service, notifier *notifsvc.Service, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(pool, repo, requestrepo.New(pool), ident, notifier)
	h := handler.New(svc, val)

	return &Module{service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "quotes"
}

// RegisterRoutes mounts the quote routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/quotes")
	m.handler.RegisterRoutes(group)
}

// Service exposes the quotes service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}
