package handler

import (
	"net/http"

	"handylink_backend/internal/identity/service"
	"handylink_backend/internal/identity/transport"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles identity HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a new identity handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the identity routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.GetMe)
	rg.POST("/register", h.Register)
	rg.PATCH("/me", h.UpdateMe)
}

// GetMe returns the caller's user record, or null when unregistered.
// GET /api/v1/users/me
func (h *Handler) GetMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	user, err := h.service.Resolve(c.Request.Context(), id.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, user)
}

// Register creates the user record on first authenticated call.
// POST /api/v1/users/register
func (h *Handler) Register(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	user, err := h.service.Register(c.Request.Context(), id.Subject(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateMe patches the caller's own profile.
// PATCH /api/v1/users/me
func (h *Handler) UpdateMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	user, err := h.service.UpdateMe(c.Request.Context(), id.Subject(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, user)
}
