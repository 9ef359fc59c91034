package handler

import (
	"net/http"
	"strconv"

	"handylink_backend/internal/requests/repository"
	"handylink_backend/internal/requests/service"
	"handylink_backend/internal/requests/transport"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles service-request HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a requests handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the request routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id/status", h.UpdateStatus)
}

// Create posts a new request.
// POST /api/v1/requests
func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	sr, err := h.service.Create(c.Request.Context(), id.Subject(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, sr)
}

// List returns requests scoped to the caller's role.
// GET /api/v1/requests?status=&category=&city=&limit=
func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter := transport.ListFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		City:     c.Query("city"),
		Limit:    limit,
	}

	items, err := h.service.List(c.Request.Context(), id.Subject(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"requests": items})
}

// Get returns one request with caller-visible quotes.
// GET /api/v1/requests/:id
func (h *Handler) Get(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request id", nil)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), ident.Subject(), requestID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, detail)
}

// UpdateStatus applies one status transition.
// PATCH /api/v1/requests/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request id", nil)
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	sr, err := h.service.UpdateStatus(c.Request.Context(), ident.Subject(), requestID, repository.Status(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, sr)
}
