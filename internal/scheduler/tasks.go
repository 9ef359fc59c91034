// Package scheduler runs the asynq-backed background jobs, currently
// the checkout-expiry safety net for payment sessions.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskCheckoutExpiry resets a request's payment sub-state after its
// checkout session expired without being paid.
const TaskCheckoutExpiry = "payments:checkout_expiry"

// CheckoutExpiryPayload identifies the session being swept.
type CheckoutExpiryPayload struct {
	RequestID string `json:"requestId"`
	SessionID string `json:"sessionId"`
}

// NewCheckoutExpiryTask builds the expiry task.
func NewCheckoutExpiryTask(payload CheckoutExpiryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckoutExpiry, data), nil
}

// ParseCheckoutExpiryPayload decodes the expiry task payload.
func ParseCheckoutExpiryPayload(task *asynq.Task) (CheckoutExpiryPayload, error) {
	var payload CheckoutExpiryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CheckoutExpiryPayload{}, err
	}
	return payload, nil
}
