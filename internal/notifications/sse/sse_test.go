package sse

import (
	"testing"

	"handylink_backend/internal/notifications/repository"
	"handylink_backend/platform/logger"

	"github.com/google/uuid"
)

func newTestClient() *client {
	return &client{
		userID: uuid.New(),
		events: make(chan repository.Notification, 1),
		done:   make(chan struct{}),
	}
}

func TestRemoveClientAfterCloseDoesNotPanic(t *testing.T) {
	s := New(logger.New("test"))
	cl := newTestClient()
	s.addClient(cl)

	// Shutdown tears every connection down; each handler goroutine then
	// runs its own deferred removal. Both paths must be safe.
	s.Close()
	s.removeClient(cl)

	select {
	case <-cl.done:
	default:
		t.Fatal("expected the client to be stopped")
	}
}

func TestRemoveClientTwiceDoesNotPanic(t *testing.T) {
	s := New(logger.New("test"))
	cl := newTestClient()
	s.addClient(cl)

	s.removeClient(cl)
	s.removeClient(cl)
}

func TestPushAfterRemovalDropsNotification(t *testing.T) {
	s := New(logger.New("test"))
	cl := newTestClient()
	s.addClient(cl)
	s.removeClient(cl)

	s.Push(repository.Notification{ID: uuid.New(), UserID: cl.userID})

	select {
	case n := <-cl.events:
		t.Fatalf("expected no delivery after removal, got %s", n.ID)
	default:
	}
}

func TestPushDeliversToConnectedClient(t *testing.T) {
	s := New(logger.New("test"))
	cl := newTestClient()
	s.addClient(cl)

	n := repository.Notification{ID: uuid.New(), UserID: cl.userID}
	s.Push(n)

	select {
	case got := <-cl.events:
		if got.ID != n.ID {
			t.Fatalf("delivered id = %s, want %s", got.ID, n.ID)
		}
	default:
		t.Fatal("expected the notification to be delivered")
	}
}
