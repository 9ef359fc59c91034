// Package files exposes presigned upload grants and stored-key
// resolution over the object storage adapter.
package files

import (
	"handylink_backend/internal/adapters/storage"
	"handylink_backend/internal/files/handler"
	"handylink_backend/internal/files/service"
	apphttp "handylink_backend/internal/http"
	identitysvc "handylink_backend/internal/identity/service"
	"handylink_backend/platform/validator"
)

// Module wires the files bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the files module over an initialized storage service.
func NewModule(st storage.Service, ident *identitysvc.Service, val *validator.Validator) *Module {
	svc := service.New(st, ident)
	h := handler.New(svc, val)

	return &Module{service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "files"
}

// RegisterRoutes mounts the file routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/files")
	m.handler.RegisterRoutes(group)
}
