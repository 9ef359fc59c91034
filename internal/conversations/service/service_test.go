package service

import (
	"testing"
	"time"

	"handylink_backend/internal/conversations/repository"

	"github.com/google/uuid"
)

func TestSplitMembersSeparatesCallerFromOther(t *testing.T) {
	caller := uuid.New()
	peer := uuid.New()
	members := []repository.Member{
		{ID: uuid.New(), UserID: peer},
		{ID: uuid.New(), UserID: caller},
	}

	me, other, err := splitMembers(members, caller)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if me.UserID != caller {
		t.Fatalf("me = %s, want %s", me.UserID, caller)
	}
	if other.UserID != peer {
		t.Fatalf("other = %s, want %s", other.UserID, peer)
	}
}

func TestSplitMembersRejectsNonParticipant(t *testing.T) {
	members := []repository.Member{
		{ID: uuid.New(), UserID: uuid.New()},
		{ID: uuid.New(), UserID: uuid.New()},
	}

	if _, _, err := splitMembers(members, uuid.New()); err == nil {
		t.Fatal("expected an outsider to be rejected")
	}
}

func TestTypingWindow(t *testing.T) {
	now := time.Now()

	fresh := now.Add(-typingWindow + time.Millisecond)
	if !typing(&repository.Member{LastTypingAt: &fresh}, now) {
		t.Fatal("a stamp inside the window should count as typing")
	}

	exact := now.Add(-typingWindow)
	if typing(&repository.Member{LastTypingAt: &exact}, now) {
		t.Fatal("a stamp exactly at the window edge should not count as typing")
	}

	if typing(&repository.Member{}, now) {
		t.Fatal("a member who never typed should not count as typing")
	}
}
