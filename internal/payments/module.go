// Package payments provides the payment domain module: Stripe Connect
// onboarding, checkout, and webhook-driven reconciliation.
package payments

import (
	apphttp "handylink_backend/internal/http"
	identitysvc "handylink_backend/internal/identity/service"
	notifsvc "handylink_backend/internal/notifications/service"
	"handylink_backend/internal/payments/gateway"
	"handylink_backend/internal/payments/handler"
	"handylink_backend/internal/payments/service"
	quoterepo "handylink_backend/internal/quotes/repository"
	requestrepo "handylink_backend/internal/requests/repository"
	"handylink_backend/platform/config"
	"handylink_backend/platform/logger"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the payments bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
	webhook *handler.WebhookHandler
}

// NewModule creates the payments module with all dependencies wired.
// The scheduler may be nil when background jobs are disabled.
func NewModule(pool *pgxpool.Pool, ident *identitysvc.Service, notifier *notifsvc.Service, cfg config.StripeConfig, scheduler service.ExpiryScheduler, val *validator.Validator, log *logger.Logger) *Module {
	gw := gateway.New(cfg)
	svc := service.New(pool, requestrepo.New(pool), quoterepo.New(pool), ident, notifier, gw, cfg, scheduler, log)

	return &Module{
		service: svc,
		handler: handler.New(svc, val),
		webhook: handler.NewWebhookHandler(svc, cfg, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "payments"
}

// RegisterRoutes mounts the payment routes. The webhook endpoint lives
// at the engine root, outside /api/v1 and outside authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/payments")
	m.handler.RegisterRoutes(group)

	ctx.Engine.POST("/stripe/webhook", m.webhook.Handle)
}

// Service exposes the payments service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}
