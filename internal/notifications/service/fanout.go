package service

import (
	"handylink_backend/internal/notifications/repository"

	"github.com/google/uuid"
)

// StatusChange describes a request status transition for fan-out purposes.
type StatusChange struct {
	RequestID  uuid.UUID
	ClientID   uuid.UUID
	ActorID    uuid.UUID
	ActorAdmin bool
	OldStatus  string
	NewStatus  string
	// QuoterIDs are the providers who quoted on the request.
	QuoterIDs []uuid.UUID
	// AcceptedProviderID is the accepted quote's provider, when one exists.
	AcceptedProviderID *uuid.UUID
}

// StatusChangeRows computes the notification rows for a request status
// change. The actor is never notified, and an unchanged status produces
// nothing.
func StatusChangeRows(ch StatusChange, title, body string) []repository.Row {
	if ch.OldStatus == ch.NewStatus {
		return nil
	}

	recipients := make([]uuid.UUID, 0, len(ch.QuoterIDs)+1)

	if ch.ActorAdmin && ch.ActorID != ch.ClientID {
		recipients = append(recipients, ch.ClientID)
	}

	switch ch.NewStatus {
	case "cancelled":
		recipients = append(recipients, ch.QuoterIDs...)
	case "accepted", "completed":
		if ch.AcceptedProviderID != nil {
			recipients = append(recipients, *ch.AcceptedProviderID)
		}
	}

	rows := make([]repository.Row, 0, len(recipients))
	seen := make(map[uuid.UUID]bool, len(recipients))
	for _, id := range recipients {
		if id == ch.ActorID || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, repository.Row{
			UserID: id,
			Type:   repository.TypeRequestUpdate,
			Title:  title,
			Body:   body,
			Data:   repository.StatusData(ch.RequestID, ch.NewStatus),
		})
	}
	return rows
}

// NewQuoteRow notifies the request's client of a fresh quote, unless the
// client submitted it themselves.
func NewQuoteRow(clientID, actorID, requestID, quoteID uuid.UUID, title, body string) []repository.Row {
	if clientID == actorID {
		return nil
	}
	return []repository.Row{{
		UserID: clientID,
		Type:   repository.TypeNewQuote,
		Title:  title,
		Body:   body,
		Data:   repository.QuoteData(requestID, quoteID),
	}}
}

// QuoteResponseRow notifies the quoting provider of an accept or decline.
func QuoteResponseRow(providerID, actorID, requestID, quoteID uuid.UUID, title, body string) []repository.Row {
	if providerID == actorID {
		return nil
	}
	return []repository.Row{{
		UserID: providerID,
		Type:   repository.TypeRequestUpdate,
		Title:  title,
		Body:   body,
		Data:   repository.QuoteResponseData(requestID, quoteID),
	}}
}

// NewMessageRow notifies the other conversation participant.
func NewMessageRow(recipientID, actorID, conversationID, messageID uuid.UUID, title, body string) []repository.Row {
	if recipientID == actorID {
		return nil
	}
	return []repository.Row{{
		UserID: recipientID,
		Type:   repository.TypeNewMessage,
		Title:  title,
		Body:   body,
		Data:   repository.MessageData(conversationID, messageID),
	}}
}

// NewReviewRow notifies the reviewed provider.
func NewReviewRow(providerID, actorID, requestID, reviewID uuid.UUID, title, body string) []repository.Row {
	if providerID == actorID {
		return nil
	}
	return []repository.Row{{
		UserID: providerID,
		Type:   repository.TypeNewReview,
		Title:  title,
		Body:   body,
		Data:   repository.ReviewData(requestID, reviewID),
	}}
}
