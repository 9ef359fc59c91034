package handler

import (
	"net/http"

	"handylink_backend/internal/categories/service"
	"handylink_backend/internal/categories/transport"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles category HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a categories handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterPublicRoutes mounts the public category routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.ListActive)
	rg.GET("/categories/:slug", h.GetBySlug)
}

// RegisterAdminRoutes mounts the admin curation routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.ListAll)
	rg.POST("/categories", h.Upsert)
	rg.POST("/categories/reorder", h.Reorder)
}

// ListActive returns the active categories in display order.
// GET /api/v1/categories
func (h *Handler) ListActive(c *gin.Context) {
	items, err := h.service.ListActive(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"categories": items})
}

// GetBySlug returns one category.
// GET /api/v1/categories/:slug
func (h *Handler) GetBySlug(c *gin.Context) {
	category, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, category)
}

// ListAll returns every category, inactive ones included.
// GET /api/v1/admin/categories
func (h *Handler) ListAll(c *gin.Context) {
	items, err := h.service.ListAll(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"categories": items})
}

// Upsert creates or updates a category.
// POST /api/v1/admin/categories
func (h *Handler) Upsert(c *gin.Context) {
	var req transport.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	category, err := h.service.Upsert(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, category)
}

// Reorder reassigns the display order.
// POST /api/v1/admin/categories/reorder
func (h *Handler) Reorder(c *gin.Context) {
	var req transport.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	err := h.service.Reorder(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "ok"})
}
