// Package reviews provides review creation, listing and admin removal,
// with transactional rating aggregation on provider profiles.
package reviews

import (
	apphttp "handylink_backend/internal/http"
	identitysvc "handylink_backend/internal/identity/service"
	notifsvc "handylink_backend/internal/notifications/service"
	providerrepo "handylink_backend/internal/providers/repository"
	quoterepo "handylink_backend/internal/quotes/repository"
	requestrepo "handylink_backend/internal/requests/repository"
	"handylink_backend/internal/reviews/handler"
	"handylink_backend/internal/reviews/repository"
	"handylink_backend/internal/reviews/service"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the reviews bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the reviews module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, ident *identitysvc.Service, notifier *notifsvc.Service, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(pool, repo, requestrepo.New(pool), quoterepo.New(pool), providerrepo.New(pool), ident, notifier)
	h := handler.New(svc, val)

	return &Module{service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reviews"
}

// RegisterRoutes mounts the review routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1)
	group := ctx.Protected.Group("/reviews")
	m.handler.RegisterRoutes(group)
}

// Service exposes the reviews service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}
