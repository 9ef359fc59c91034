package service

import (
	"testing"

	"handylink_backend/internal/requests/repository"

	"github.com/google/uuid"
)

func request(status repository.Status, acceptedQuote bool) *repository.ServiceRequest {
	sr := &repository.ServiceRequest{Status: status}
	if acceptedQuote {
		id := uuid.New()
		sr.AcceptedQuoteID = &id
	}
	return sr
}

func TestValidateTransitionClientCancel(t *testing.T) {
	for _, from := range []repository.Status{
		repository.StatusOpen,
		repository.StatusInDiscussion,
		repository.StatusAccepted,
		repository.StatusCancelled,
	} {
		if err := validateTransition(request(from, false), repository.StatusCancelled, false); err != nil {
			t.Fatalf("expected cancel from %s to succeed, got %v", from, err)
		}
	}
}

func TestValidateTransitionClientCannotCancelCompleted(t *testing.T) {
	err := validateTransition(request(repository.StatusCompleted, true), repository.StatusCancelled, false)
	if err == nil {
		t.Fatal("expected cancelling a completed request to fail")
	}
}

func TestValidateTransitionClientComplete(t *testing.T) {
	if err := validateTransition(request(repository.StatusAccepted, true), repository.StatusCompleted, false); err != nil {
		t.Fatalf("expected completion from accepted to succeed, got %v", err)
	}
}

func TestValidateTransitionClientCompleteNeedsAcceptedQuote(t *testing.T) {
	err := validateTransition(request(repository.StatusAccepted, false), repository.StatusCompleted, false)
	if err == nil {
		t.Fatal("expected completion without an accepted quote to fail")
	}
}

func TestValidateTransitionClientCompleteOnlyFromAccepted(t *testing.T) {
	for _, from := range []repository.Status{
		repository.StatusOpen,
		repository.StatusInDiscussion,
		repository.StatusCompleted,
		repository.StatusCancelled,
	} {
		if err := validateTransition(request(from, true), repository.StatusCompleted, false); err == nil {
			t.Fatalf("expected completion from %s to fail", from)
		}
	}
}

func TestValidateTransitionClientCannotReopen(t *testing.T) {
	err := validateTransition(request(repository.StatusCompleted, true), repository.StatusOpen, false)
	if err == nil {
		t.Fatal("expected completed -> open to fail for a client")
	}
}

func TestValidateTransitionAdminMaySetAnyValidStatus(t *testing.T) {
	for _, next := range []repository.Status{
		repository.StatusOpen,
		repository.StatusInDiscussion,
		repository.StatusAccepted,
		repository.StatusCompleted,
		repository.StatusCancelled,
	} {
		if err := validateTransition(request(repository.StatusCompleted, false), next, true); err != nil {
			t.Fatalf("expected admin transition to %s to succeed, got %v", next, err)
		}
	}
}

func TestValidateTransitionRejectsUnknownStatus(t *testing.T) {
	if err := validateTransition(request(repository.StatusOpen, false), repository.Status("archived"), true); err == nil {
		t.Fatal("expected unknown status to be rejected even for admins")
	}
}

func TestStatusChangeTextVariesPerStatus(t *testing.T) {
	cases := []struct {
		next      repository.Status
		wantTitle string
		wantBody  string
	}{
		{repository.StatusCancelled, "Request cancelled", `The request "Fix the sink" was cancelled.`},
		{repository.StatusCompleted, "Request completed", `The request "Fix the sink" was marked completed.`},
		{repository.StatusAccepted, "Request accepted", `The request "Fix the sink" was accepted.`},
		{repository.StatusInDiscussion, "Request updated", `The request "Fix the sink" was updated.`},
	}
	for _, tc := range cases {
		title, body := statusChangeText("Fix the sink", tc.next)
		if title != tc.wantTitle {
			t.Fatalf("title for %s = %q, want %q", tc.next, title, tc.wantTitle)
		}
		if body != tc.wantBody {
			t.Fatalf("body for %s = %q, want %q", tc.next, body, tc.wantBody)
		}
	}
}
