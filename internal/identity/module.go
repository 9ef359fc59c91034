// Package identity owns user accounts: registration, profile, roles and
// the admin flag. Other modules depend on its service to map the
// authenticated subject to a user and to enforce role guards.
package identity

import (
	"net/http"

	apphttp "handylink_backend/internal/http"
	"handylink_backend/internal/identity/handler"
	"handylink_backend/internal/identity/repository"
	"handylink_backend/internal/identity/service"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the identity bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the identity module with its full dependency chain.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "identity"
}

// RegisterRoutes mounts the identity routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	users := ctx.Protected.Group("/users")
	m.handler.RegisterRoutes(users)
}

// Service exposes the identity service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// AdminMiddleware returns a middleware that requires the caller to be a
// registered admin. It runs after the auth middleware, so the subject is
// already resolved.
func (m *Module) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpkit.MustGetIdentity(c)
		if id == nil {
			return
		}

		if _, err := m.service.RequireAdmin(c.Request.Context(), id.Subject()); err != nil {
			if !httpkit.HandleError(c, err) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
