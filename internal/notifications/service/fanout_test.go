package service

import (
	"testing"

	"handylink_backend/internal/notifications/repository"

	"github.com/google/uuid"
)

func recipients(rows []repository.Row) map[uuid.UUID]bool {
	got := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		got[row.UserID] = true
	}
	return got
}

func TestStatusChangeRowsUnchangedStatusIsSilent(t *testing.T) {
	rows := StatusChangeRows(StatusChange{
		RequestID: uuid.New(),
		ClientID:  uuid.New(),
		ActorID:   uuid.New(),
		OldStatus: "open",
		NewStatus: "open",
		QuoterIDs: []uuid.UUID{uuid.New()},
	}, "t", "b")
	if len(rows) != 0 {
		t.Fatalf("expected no rows for unchanged status, got %d", len(rows))
	}
}

func TestStatusChangeRowsCancelNotifiesQuoters(t *testing.T) {
	client := uuid.New()
	quoterA, quoterB := uuid.New(), uuid.New()

	rows := StatusChangeRows(StatusChange{
		RequestID: uuid.New(),
		ClientID:  client,
		ActorID:   client,
		OldStatus: "in_discussion",
		NewStatus: "cancelled",
		QuoterIDs: []uuid.UUID{quoterA, quoterB},
	}, "t", "b")

	got := recipients(rows)
	if len(rows) != 2 || !got[quoterA] || !got[quoterB] {
		t.Fatalf("expected both quoters notified, got %v", got)
	}
	if got[client] {
		t.Fatal("the acting client must not be notified")
	}
}

func TestStatusChangeRowsCompletedNotifiesAcceptedProvider(t *testing.T) {
	client := uuid.New()
	provider := uuid.New()

	rows := StatusChangeRows(StatusChange{
		RequestID:          uuid.New(),
		ClientID:           client,
		ActorID:            client,
		OldStatus:          "accepted",
		NewStatus:          "completed",
		QuoterIDs:          []uuid.UUID{provider, uuid.New()},
		AcceptedProviderID: &provider,
	}, "t", "b")

	if len(rows) != 1 || rows[0].UserID != provider {
		t.Fatalf("expected only the accepted provider notified, got %d rows", len(rows))
	}
	if rows[0].Type != repository.TypeRequestUpdate {
		t.Fatalf("expected request_update type, got %s", rows[0].Type)
	}
}

func TestStatusChangeRowsAdminChangeNotifiesClient(t *testing.T) {
	client := uuid.New()
	admin := uuid.New()

	rows := StatusChangeRows(StatusChange{
		RequestID:  uuid.New(),
		ClientID:   client,
		ActorID:    admin,
		ActorAdmin: true,
		OldStatus:  "open",
		NewStatus:  "in_discussion",
	}, "t", "b")

	if len(rows) != 1 || rows[0].UserID != client {
		t.Fatalf("expected the client notified of the admin change, got %d rows", len(rows))
	}
}

func TestStatusChangeRowsActorNeverDuplicatedOrNotified(t *testing.T) {
	client := uuid.New()
	provider := uuid.New()

	// The accepted provider also appears among the quoters.
	rows := StatusChangeRows(StatusChange{
		RequestID:          uuid.New(),
		ClientID:           client,
		ActorID:            client,
		OldStatus:          "in_discussion",
		NewStatus:          "cancelled",
		QuoterIDs:          []uuid.UUID{provider, provider},
		AcceptedProviderID: &provider,
	}, "t", "b")

	if len(rows) != 1 || rows[0].UserID != provider {
		t.Fatalf("expected the provider notified exactly once, got %d rows", len(rows))
	}
}

func TestNewQuoteRowSkipsSelfQuote(t *testing.T) {
	client := uuid.New()
	if rows := NewQuoteRow(client, client, uuid.New(), uuid.New(), "t", "b"); len(rows) != 0 {
		t.Fatal("expected no notification when the client is the actor")
	}
}

func TestNewQuoteRowNotifiesClient(t *testing.T) {
	client := uuid.New()
	rows := NewQuoteRow(client, uuid.New(), uuid.New(), uuid.New(), "t", "b")
	if len(rows) != 1 || rows[0].UserID != client || rows[0].Type != repository.TypeNewQuote {
		t.Fatalf("expected one new_quote row for the client, got %+v", rows)
	}
}

func TestNewMessageRowNotifiesOtherParticipant(t *testing.T) {
	other := uuid.New()
	rows := NewMessageRow(other, uuid.New(), uuid.New(), uuid.New(), "t", "b")
	if len(rows) != 1 || rows[0].UserID != other || rows[0].Type != repository.TypeNewMessage {
		t.Fatalf("expected one new_message row for the other participant, got %+v", rows)
	}
}

func TestNewReviewRowNotifiesProvider(t *testing.T) {
	provider := uuid.New()
	rows := NewReviewRow(provider, uuid.New(), uuid.New(), uuid.New(), "t", "b")
	if len(rows) != 1 || rows[0].UserID != provider || rows[0].Type != repository.TypeNewReview {
		t.Fatalf("expected one new_review row for the provider, got %+v", rows)
	}
}

func TestQuoteResponseRowSkipsActingProvider(t *testing.T) {
	provider := uuid.New()
	if rows := QuoteResponseRow(provider, provider, uuid.New(), uuid.New(), "t", "b"); len(rows) != 0 {
		t.Fatal("expected no notification when the provider is the actor")
	}
}
