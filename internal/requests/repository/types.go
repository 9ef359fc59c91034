package repository

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a service request.
type Status string

const (
	StatusOpen         Status = "open"
	StatusInDiscussion Status = "in_discussion"
	StatusAccepted     Status = "accepted"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// Terminal reports whether no further status transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInDiscussion, StatusAccepted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the payment sub-state of a request.
type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
)

// ServiceRequest is a client's posted job. AcceptedQuoteID, when set,
// references a quote on this request with status accepted.
type ServiceRequest struct {
	ID           uuid.UUID `json:"id"`
	ClientID     uuid.UUID `json:"clientId"`
	CategorySlug string    `json:"categorySlug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Photos       []string  `json:"photos"`

	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address *string  `json:"address,omitempty"`
	City    *string  `json:"city,omitempty"`

	Urgency        string `json:"urgency"`
	BudgetMinCents *int64 `json:"budgetMinCents,omitempty"`
	BudgetMaxCents *int64 `json:"budgetMaxCents,omitempty"`

	Status          Status     `json:"status"`
	AcceptedQuoteID *uuid.UUID `json:"acceptedQuoteId,omitempty"`

	PaymentStatus       PaymentStatus `json:"paymentStatus"`
	CheckoutSessionID   *string       `json:"checkoutSessionId,omitempty"`
	PaymentIntentID     *string       `json:"paymentIntentId,omitempty"`
	PlatformFeeCents    *int64        `json:"platformFeeCents,omitempty"`
	ProviderPayoutCents *int64        `json:"providerPayoutCents,omitempty"`
	PaidAt              *time.Time    `json:"paidAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateParams carries the fields of a new request.
type CreateParams struct {
	ClientID     uuid.UUID
	CategorySlug string
	Title        string
	Description  string
	Photos       []string

	Lat     *float64
	Lng     *float64
	Address *string
	City    *string

	Urgency        string
	BudgetMinCents *int64
	BudgetMaxCents *int64
}

// ListParams filters the request list for the caller's role.
type ListParams struct {
	// ClientID scopes the list to one client's own requests.
	ClientID *uuid.UUID
	// Cities and Categories scope the open-request feed for a provider.
	Cities     []string
	Categories []string
	// Status, CategorySlug and City are admin-side filters.
	Status       Status
	CategorySlug string
	City         string
	Limit        int
}
