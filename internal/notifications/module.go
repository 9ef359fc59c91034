// Package notifications provides the in-app notification module: durable
// per-user notification rows written inside the producing operation's
// transaction, fan-out rules, and real-time delivery over SSE.
package notifications

import (
	"context"

	apphttp "handylink_backend/internal/http"
	identitysvc "handylink_backend/internal/identity/service"
	"handylink_backend/internal/notifications/handler"
	"handylink_backend/internal/notifications/repository"
	"handylink_backend/internal/notifications/service"
	"handylink_backend/internal/notifications/sse"
	"handylink_backend/platform/events"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the notifications bounded context.
type Module struct {
	service *service.Service
	sse     *sse.Service
	handler *handler.Handler
	ident   *identitysvc.Service
}

// NewModule creates the notifications module and subscribes the SSE layer
// to post-commit notification events.
func NewModule(pool *pgxpool.Pool, ident *identitysvc.Service, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, ident, bus)
	stream := sse.New(log)

	bus.Subscribe(service.CreatedEventName, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		created, ok := e.(service.CreatedEvent)
		if !ok {
			return nil
		}
		for _, n := range created.Notifications {
			stream.Push(n)
		}
		return nil
	}))

	return &Module{
		service: svc,
		sse:     stream,
		handler: handler.New(svc),
		ident:   ident,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notifications"
}

// RegisterRoutes mounts the notification routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/notifications")
	m.handler.RegisterRoutes(group, m.sse.Handler(m.resolveUser))
}

// Service exposes the notifications service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Close drops open SSE connections during shutdown.
func (m *Module) Close() {
	m.sse.Close()
}

func (m *Module) resolveUser(c *gin.Context) (uuid.UUID, bool) {
	id := httpkit.GetIdentity(c)
	user, err := m.ident.RequireUser(c.Request.Context(), id.Subject())
	if httpkit.HandleError(c, err) {
		return uuid.Nil, false
	}
	return user.ID, true
}
