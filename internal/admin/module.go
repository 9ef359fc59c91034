// Package admin provides the moderation surface: platform stats, user
// search and suspension, provider verification and review removal.
package admin

import (
	adminhandler "handylink_backend/internal/admin/handler"
	adminrepo "handylink_backend/internal/admin/repository"
	"handylink_backend/internal/admin/service"
	apphttp "handylink_backend/internal/http"
	identityrepo "handylink_backend/internal/identity/repository"
	identitysvc "handylink_backend/internal/identity/service"
	providerrepo "handylink_backend/internal/providers/repository"
	requestrepo "handylink_backend/internal/requests/repository"
	reviewsvc "handylink_backend/internal/reviews/service"
	"handylink_backend/platform/config"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the admin bounded context.
type Module struct {
	service *service.Service
	handler *adminhandler.Handler
}

// NewModule creates the admin module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, ident *identitysvc.Service, reviews *reviewsvc.Service, cfg config.AdminConfig, val *validator.Validator) *Module {
	repo := adminrepo.New(pool)
	svc := service.New(repo, identityrepo.New(pool), requestrepo.New(pool), providerrepo.New(pool), reviews, ident, cfg)
	h := adminhandler.New(svc, val)

	return &Module{service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "admin"
}

// RegisterRoutes mounts the claim endpoint on the protected group and
// the rest behind the admin gate.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterClaimRoute(ctx.Protected)
	m.handler.RegisterRoutes(ctx.Admin)
}
