package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type stubConfig struct {
	redisURL string
	queue    string
}

func (c stubConfig) GetRedisURL() string       { return c.redisURL }
func (c stubConfig) GetRedisTLSInsecure() bool { return false }
func (c stubConfig) GetAsynqQueueName() string { return c.queue }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(stubConfig{}); err == nil {
		t.Fatal("expected an error without a redis url")
	}
}

func TestScheduleCheckoutExpiryEnqueues(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(stubConfig{redisURL: "redis://" + srv.Addr(), queue: "payments"})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	defer client.Close()

	err = client.ScheduleCheckoutExpiry(context.Background(), uuid.New(), "cs_test_123", time.Now().Add(30*time.Minute))
	if err != nil {
		t.Fatalf("scheduling expiry: %v", err)
	}

	keys := srv.Keys()
	if len(keys) == 0 {
		t.Fatal("expected the task to be written to redis")
	}
	found := false
	for _, k := range keys {
		if k == "asynq:{payments}:scheduled" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a scheduled set for the payments queue, got keys %v", keys)
	}
}

func TestNilClientIsNoOp(t *testing.T) {
	var client *Client
	if err := client.ScheduleCheckoutExpiry(context.Background(), uuid.New(), "cs_test", time.Now()); err != nil {
		t.Fatalf("nil client should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil client close should be a no-op, got %v", err)
	}
}

func TestCheckoutExpiryPayloadRoundTrip(t *testing.T) {
	id := uuid.New()
	task, err := NewCheckoutExpiryTask(CheckoutExpiryPayload{RequestID: id.String(), SessionID: "cs_1"})
	if err != nil {
		t.Fatalf("building task: %v", err)
	}
	if task.Type() != TaskCheckoutExpiry {
		t.Fatalf("task type = %s, want %s", task.Type(), TaskCheckoutExpiry)
	}
	payload, err := ParseCheckoutExpiryPayload(task)
	if err != nil {
		t.Fatalf("parsing payload: %v", err)
	}
	if payload.RequestID != id.String() || payload.SessionID != "cs_1" {
		t.Fatalf("payload round trip mismatch: %+v", payload)
	}
}
