package handler

import (
	"net/http"

	"handylink_backend/internal/conversations/service"
	"handylink_backend/internal/conversations/transport"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles conversation HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a conversations handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the conversation routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Start)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/messages", h.SendMessage)
	rg.POST("/:id/read", h.MarkAsRead)
	rg.POST("/:id/typing", h.SetTyping)
	rg.GET("/:id/typing", h.GetTyping)
}

// Start opens or reuses a conversation.
// POST /api/v1/conversations
func (h *Handler) Start(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req transport.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	conv, err := h.service.Start(c.Request.Context(), ident.Subject(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// List returns the caller's inbox.
// GET /api/v1/conversations
func (h *Handler) List(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	items, err := h.service.List(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"conversations": items})
}

// Get returns one conversation with its recent messages.
// GET /api/v1/conversations/:id
func (h *Handler) Get(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid conversation id", nil)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), ident.Subject(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, detail)
}

// SendMessage posts a message into the conversation.
// POST /api/v1/conversations/:id/messages
func (h *Handler) SendMessage(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid conversation id", nil)
		return
	}

	var req transport.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), ident.Subject(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkAsRead flips recent incoming messages to read and resets the
// caller's unread counter.
// POST /api/v1/conversations/:id/read
func (h *Handler) MarkAsRead(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid conversation id", nil)
		return
	}

	err = h.service.MarkAsRead(c.Request.Context(), ident.Subject(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "ok"})
}

// SetTyping stamps the caller's typing indicator.
// POST /api/v1/conversations/:id/typing
func (h *Handler) SetTyping(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid conversation id", nil)
		return
	}

	err = h.service.SetTyping(c.Request.Context(), ident.Subject(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "ok"})
}

// GetTyping reports whether the other participant is typing.
// GET /api/v1/conversations/:id/typing
func (h *Handler) GetTyping(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid conversation id", nil)
		return
	}

	typing, err := h.service.GetTyping(c.Request.Context(), ident.Subject(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"typing": typing})
}
