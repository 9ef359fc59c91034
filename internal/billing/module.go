// Package billing provides subscription billing through Polar: plan
// lookup, pro checkout and webhook-driven plan reconciliation.
package billing

import (
	"handylink_backend/internal/billing/client"
	"handylink_backend/internal/billing/handler"
	"handylink_backend/internal/billing/service"
	apphttp "handylink_backend/internal/http"
	identitysvc "handylink_backend/internal/identity/service"
	"handylink_backend/platform/config"
	"handylink_backend/platform/logger"
)

// Module wires the billing bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
	webhook *handler.WebhookHandler
}

// NewModule creates the billing module with all dependencies wired.
func NewModule(ident *identitysvc.Service, cfg config.PolarConfig, log *logger.Logger) *Module {
	polar := client.New(cfg.GetPolarAccessToken(), cfg.GetPolarServer(), log)
	svc := service.New(polar, ident, cfg, log)

	return &Module{
		service: svc,
		handler: handler.New(svc),
		webhook: handler.NewWebhookHandler(svc, cfg, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "billing"
}

// RegisterRoutes mounts the billing routes and the engine-level
// webhook endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/billing")
	m.handler.RegisterRoutes(group)
	ctx.Engine.POST("/polar/webhook", m.webhook.Handle)
}
