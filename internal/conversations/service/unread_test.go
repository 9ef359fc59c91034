package service

import (
	"context"
	"testing"
	"time"

	"handylink_backend/internal/conversations/repository"
	"handylink_backend/internal/conversations/transport"
	identityrepo "handylink_backend/internal/identity/repository"
	notifrepo "handylink_backend/internal/notifications/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type testTx struct{}

func (testTx) Begin(context.Context) (pgx.Tx, error) { return testTx{}, nil }
func (testTx) Commit(context.Context) error          { return nil }
func (testTx) Rollback(context.Context) error        { return nil }
func (testTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (testTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (testTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (testTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (testTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (testTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (testTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (testTx) Conn() *pgx.Conn                                         { return nil }

type testDB struct{}

func (testDB) Begin(context.Context) (pgx.Tx, error) { return testTx{}, nil }

type testIdentity struct {
	user *identityrepo.User
}

func (i testIdentity) RequireUser(context.Context, string) (*identityrepo.User, error) {
	return i.user, nil
}
func (i testIdentity) GetUser(context.Context, uuid.UUID) (*identityrepo.User, error) {
	return i.user, nil
}

// testStore keeps two member rows and records unread mutations.
type testStore struct {
	members []repository.Member

	incremented []uuid.UUID
	readBy      []uuid.UUID
}

func (s *testStore) FindByPairTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID, *uuid.UUID) (*repository.Conversation, error) {
	return nil, nil
}
func (s *testStore) CreateTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID, *uuid.UUID) (*repository.Conversation, error) {
	return &repository.Conversation{ID: uuid.New()}, nil
}
func (s *testStore) GetByID(context.Context, uuid.UUID) (*repository.Conversation, error) {
	return &repository.Conversation{ID: uuid.New()}, nil
}
func (s *testStore) ListForUser(context.Context, uuid.UUID) ([]repository.Listing, error) {
	return nil, nil
}
func (s *testStore) Members(context.Context, uuid.UUID) ([]repository.Member, error) {
	return s.members, nil
}
func (s *testStore) MembersTx(context.Context, pgx.Tx, uuid.UUID) ([]repository.Member, error) {
	return s.members, nil
}
func (s *testStore) Messages(context.Context, uuid.UUID, int) ([]repository.Message, error) {
	return nil, nil
}
func (s *testStore) InsertMessageTx(_ context.Context, _ pgx.Tx, conversationID, senderID uuid.UUID, content string, imageKey *string) (*repository.Message, error) {
	return &repository.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		ImageKey:       imageKey,
		CreatedAt:      time.Now(),
	}, nil
}
func (s *testStore) TouchLastMessageTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID, string, time.Time) error {
	return nil
}
func (s *testStore) IncrementUnreadTx(_ context.Context, _ pgx.Tx, memberID uuid.UUID) error {
	s.incremented = append(s.incremented, memberID)
	return nil
}
func (s *testStore) MarkReadTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, userID uuid.UUID) error {
	s.readBy = append(s.readBy, userID)
	return nil
}
func (s *testStore) SetTyping(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type testNotifier struct {
	delivered []notifrepo.Row
}

func (n *testNotifier) DeliverTx(_ context.Context, _ pgx.Tx, rows []notifrepo.Row) ([]notifrepo.Notification, error) {
	n.delivered = append(n.delivered, rows...)
	return make([]notifrepo.Notification, len(rows)), nil
}
func (n *testNotifier) Publish(context.Context, []notifrepo.Notification) {}

func chatFixture() (*Service, *testStore, *testNotifier, *identityrepo.User, repository.Member, repository.Member) {
	sender := &identityrepo.User{ID: uuid.New(), FullName: "Alex"}
	me := repository.Member{ID: uuid.New(), UserID: sender.ID}
	other := repository.Member{ID: uuid.New(), UserID: uuid.New()}

	store := &testStore{members: []repository.Member{me, other}}
	notifier := &testNotifier{}
	svc := New(testDB{}, store, testIdentity{user: sender}, notifier)
	return svc, store, notifier, sender, me, other
}

func TestSendMessageIncrementsOnlyOtherMember(t *testing.T) {
	svc, store, notifier, _, me, other := chatFixture()

	msg, err := svc.SendMessage(context.Background(), "sub_1", uuid.New(), transport.SendMessageRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Content != "hello" {
		t.Fatalf("content = %q, want %q", msg.Content, "hello")
	}
	if len(store.incremented) != 1 || store.incremented[0] != other.ID {
		t.Fatalf("expected exactly the other member's counter bumped, got %v", store.incremented)
	}
	for _, id := range store.incremented {
		if id == me.ID {
			t.Fatal("the sender's own counter must not be bumped")
		}
	}
	if len(notifier.delivered) != 1 || notifier.delivered[0].UserID != other.UserID {
		t.Fatal("expected one new_message notification for the other participant")
	}
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	svc, store, _, _, _, _ := chatFixture()
	store.members = []repository.Member{
		{ID: uuid.New(), UserID: uuid.New()},
		{ID: uuid.New(), UserID: uuid.New()},
	}

	if _, err := svc.SendMessage(context.Background(), "sub_1", uuid.New(), transport.SendMessageRequest{Content: "hi"}); err == nil {
		t.Fatal("expected an outsider's message to be rejected")
	}
	if len(store.incremented) != 0 {
		t.Fatal("a rejected message must not touch unread counters")
	}
}

func TestSendMessageRequiresContentOrImage(t *testing.T) {
	svc, _, _, _, _, _ := chatFixture()

	if _, err := svc.SendMessage(context.Background(), "sub_1", uuid.New(), transport.SendMessageRequest{}); err == nil {
		t.Fatal("expected an empty message to be rejected")
	}
}

func TestMarkAsReadResetsCaller(t *testing.T) {
	svc, store, _, sender, _, _ := chatFixture()

	if err := svc.MarkAsRead(context.Background(), "sub_1", uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.readBy) != 1 || store.readBy[0] != sender.ID {
		t.Fatalf("expected the caller's membership reset, got %v", store.readBy)
	}
}

func TestMarkAsReadRejectsNonParticipant(t *testing.T) {
	svc, store, _, _, _, _ := chatFixture()
	store.members = []repository.Member{
		{ID: uuid.New(), UserID: uuid.New()},
		{ID: uuid.New(), UserID: uuid.New()},
	}

	if err := svc.MarkAsRead(context.Background(), "sub_1", uuid.New()); err == nil {
		t.Fatal("expected an outsider's read to be rejected")
	}
	if len(store.readBy) != 0 {
		t.Fatal("a rejected read must not reset any membership")
	}
}
