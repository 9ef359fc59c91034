// Package conversations provides two-party chat: conversation
// creation, message sending with unread bookkeeping, read receipts and
// typing indicators.
package conversations

import (
	"handylink_backend/internal/conversations/handler"
	"handylink_backend/internal/conversations/repository"
	"handylink_backend/internal/conversations/service"
	apphttp "handylink_backend/internal/http"
	identitysvc "handylink_backend/internal/identity/service"
	notifsvc "handylink_backend/internal/notifications/service"
	"handylink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the conversations bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the conversations module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, ident *identitysvc.Service, notifier *notifsvc.Service, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(pool, repo, ident, notifier)
	h := handler.New(svc, val)

	return &Module{service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversations"
}

// RegisterRoutes mounts the conversation routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/conversations")
	m.handler.RegisterRoutes(group)
}
