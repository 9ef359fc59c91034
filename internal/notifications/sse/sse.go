// Package sse streams notification events to connected clients over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"sync"

	"handylink_backend/internal/notifications/repository"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// client is one open SSE connection. The events channel is never
// closed; teardown is signalled through done so that neither Push nor
// a second removal can hit a closed channel.
type client struct {
	userID uuid.UUID
	events chan repository.Notification
	done   chan struct{}
	once   sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// Service manages SSE connections and per-user pushes.
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
	log     *logger.Logger
}

// New creates an SSE service.
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.userID] = append(s.clients[c.userID], c)
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns := s.clients[c.userID]
	for i, cl := range conns {
		if cl == c {
			s.clients[c.userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(s.clients[c.userID]) == 0 {
		delete(s.clients, c.userID)
	}
	c.stop()
}

// Push delivers a notification to every open connection of its recipient.
// Slow consumers are skipped rather than blocking the publisher.
func (s *Service) Push(n repository.Notification) {
	s.mu.RLock()
	conns := s.clients[n.UserID]
	s.mu.RUnlock()

	for _, c := range conns {
		select {
		case <-c.done:
		case c.events <- n:
		default:
			s.log.Warn("sse event buffer full", "user_id", n.UserID)
		}
	}
}

// Handler streams notifications to an authenticated user until the
// connection closes. resolveUser maps the request's subject to a user id.
func (s *Service) Handler(resolveUser func(*gin.Context) (uuid.UUID, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpkit.MustGetIdentity(c)
		if id == nil {
			return
		}

		userID, ok := resolveUser(c)
		if !ok {
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			userID: userID,
			events: make(chan repository.Notification, 32),
			done:   make(chan struct{}),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"userId": userID})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case <-cl.done:
				return
			case n := <-cl.events:
				payload, _ := json.Marshal(n)
				c.SSEvent("notification", string(payload))
				c.Writer.Flush()
			}
		}
	}
}

// Close drops every open connection.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, conns := range s.clients {
		for _, c := range conns {
			c.stop()
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
}
