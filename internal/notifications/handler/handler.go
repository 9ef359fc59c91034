package handler

import (
	"net/http"
	"strconv"

	"handylink_backend/internal/notifications/service"
	"handylink_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles notification HTTP requests.
type Handler struct {
	service *service.Service
}

// New creates a notifications handler.
func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes mounts the notification routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, stream gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/unread-count", h.UnreadCount)
	rg.POST("/mark-read", h.MarkRead)
	rg.GET("/stream", stream)
}

// List returns the caller's notifications, newest first.
// GET /api/v1/notifications?limit=50
func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := h.service.List(c.Request.Context(), id.Subject(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"notifications": items})
}

// UnreadCount returns the caller's unread notification count.
// GET /api/v1/notifications/unread-count
func (h *Handler) UnreadCount(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), id.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"count": count})
}

type markReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// MarkRead marks the given notifications read; an empty body marks all.
// POST /api/v1/notifications/mark-read
func (h *Handler) MarkRead(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req markReadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
			return
		}
	}

	if err := h.service.MarkRead(c.Request.Context(), id.Subject(), req.IDs); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"success": true})
}
