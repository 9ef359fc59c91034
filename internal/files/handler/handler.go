package handler

import (
	"net/http"

	"handylink_backend/internal/files/service"
	"handylink_backend/internal/files/transport"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles file HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a files handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the file routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-url", h.CreateUploadURL)
	rg.POST("/resolve", h.Resolve)
}

// CreateUploadURL returns a presigned upload grant.
// POST /api/v1/files/upload-url
func (h *Handler) CreateUploadURL(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req transport.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	grant, err := h.service.CreateUploadURL(c.Request.Context(), ident.Subject(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, grant)
}

// Resolve turns stored keys into download URLs.
// POST /api/v1/files/resolve
func (h *Handler) Resolve(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req transport.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	urls, err := h.service.Resolve(c.Request.Context(), ident.Subject(), req.Keys)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"urls": urls})
}
