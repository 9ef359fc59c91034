package repository

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of notification.
type Type string

const (
	TypeNewMessage    Type = "new_message"
	TypeNewQuote      Type = "new_quote"
	TypeRequestUpdate Type = "request_update"
	TypeNewReview     Type = "new_review"
)

// Data is the notification payload. Exactly the fields for the
// notification's type are set; everything else stays nil.
type Data struct {
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
	MessageID      *uuid.UUID `json:"messageId,omitempty"`
	RequestID      *uuid.UUID `json:"requestId,omitempty"`
	QuoteID        *uuid.UUID `json:"quoteId,omitempty"`
	Status         *string    `json:"status,omitempty"`
	ReviewID       *uuid.UUID `json:"reviewId,omitempty"`
}

// MessageData builds the payload for a new_message notification.
func MessageData(conversationID, messageID uuid.UUID) Data {
	return Data{ConversationID: &conversationID, MessageID: &messageID}
}

// QuoteData builds the payload for a new_quote notification.
func QuoteData(requestID, quoteID uuid.UUID) Data {
	return Data{RequestID: &requestID, QuoteID: &quoteID}
}

// StatusData builds the payload for a request_update notification
// describing a status change.
func StatusData(requestID uuid.UUID, status string) Data {
	return Data{RequestID: &requestID, Status: &status}
}

// QuoteResponseData builds the payload for a request_update notification
// describing a quote accept or decline.
func QuoteResponseData(requestID, quoteID uuid.UUID) Data {
	return Data{RequestID: &requestID, QuoteID: &quoteID}
}

// ReviewData builds the payload for a new_review notification.
func ReviewData(requestID, reviewID uuid.UUID) Data {
	return Data{RequestID: &requestID, ReviewID: &reviewID}
}

// Notification is a single immutable insert; only isRead ever changes.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Data      Data      `json:"data"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Row is one pending notification insert.
type Row struct {
	UserID uuid.UUID
	Type   Type
	Title  string
	Body   string
	Data   Data
}
