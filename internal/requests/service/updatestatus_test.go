package service

import (
	"context"
	"testing"

	identityrepo "handylink_backend/internal/identity/repository"
	notifrepo "handylink_backend/internal/notifications/repository"
	providerrepo "handylink_backend/internal/providers/repository"
	quoterepo "handylink_backend/internal/quotes/repository"
	"handylink_backend/internal/requests/repository"

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

type testStore struct {
	sr *repository.ServiceRequest

	statusSet *repository.Status
	touched   bool
}

func (s *testStore) GetByID(context.Context, uuid.UUID) (*repository.ServiceRequest, error) {
	return s.sr, nil
}
func (s *testStore) GetByIDTx(context.Context, pgx.Tx, uuid.UUID) (*repository.ServiceRequest, error) {
	return s.sr, nil
}
func (s *testStore) SetStatusTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, status repository.Status) error {
	s.statusSet = &status
	return nil
}
func (s *testStore) TouchUpdatedTx(context.Context, pgx.Tx, uuid.UUID) error {
	s.touched = true
	return nil
}
func (s *testStore) AcceptQuoteTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID) error {
	return nil
}
func (s *testStore) Create(context.Context, repository.CreateParams) (*repository.ServiceRequest, error) {
	return s.sr, nil
}
func (s *testStore) List(context.Context, repository.ListParams) ([]repository.ServiceRequest, error) {
	return nil, nil
}
func (s *testStore) ListOpenForProvider(context.Context, []string, []string, int) ([]repository.ServiceRequest, error) {
	return nil, nil
}

type testQuoteStore struct {
	quoters []uuid.UUID
}

func (q testQuoteStore) GetByIDTx(context.Context, pgx.Tx, uuid.UUID) (*quoterepo.Quote, error) {
	return &quoterepo.Quote{ProviderID: uuid.New()}, nil
}
func (q testQuoteStore) HasQuoteFrom(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}
func (q testQuoteStore) ListByRequest(context.Context, uuid.UUID) ([]quoterepo.Quote, error) {
	return nil, nil
}
func (q testQuoteStore) QuoterIDsTx(context.Context, pgx.Tx, uuid.UUID) ([]uuid.UUID, error) {
	return q.quoters, nil
}

type testProviderStore struct{}

func (testProviderStore) GetByUserID(context.Context, uuid.UUID) (*providerrepo.Profile, error) {
	return nil, nil
}

type testNotifier struct {
	delivered []notifrepo.Row
}

func (n *testNotifier) DeliverTx(_ context.Context, _ pgx.Tx, rows []notifrepo.Row) ([]notifrepo.Notification, error) {
	n.delivered = append(n.delivered, rows...)
	return make([]notifrepo.Notification, len(rows)), nil
}
func (n *testNotifier) Publish(context.Context, []notifrepo.Notification) {}

func statusFixture(status repository.Status, quoters []uuid.UUID) (*Service, *testStore, *testNotifier, *identityrepo.User) {
	client := &identityrepo.User{ID: uuid.New(), Role: identityrepo.RoleClient}
	store := &testStore{sr: &repository.ServiceRequest{
		ID:       uuid.New(),
		ClientID: client.ID,
		Title:    "Fix the sink",
		Status:   status,
	}}
	notifier := &testNotifier{}
	svc := New(testDB{}, store, testQuoteStore{quoters: quoters}, testProviderStore{}, testIdentity{user: client}, notifier)
	return svc, store, notifier, client
}

func TestUpdateStatusSameStatusBumpsUpdatedAt(t *testing.T) {
	svc, store, notifier, _ := statusFixture(repository.StatusOpen, nil)

	result, err := svc.UpdateStatus(context.Background(), "sub_1", store.sr.ID, repository.StatusOpen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.touched {
		t.Fatal("a same-status update must still bump updatedAt")
	}
	if store.statusSet != nil {
		t.Fatal("a same-status update must not rewrite the status")
	}
	if len(notifier.delivered) != 0 {
		t.Fatal("a same-status update must notify nobody")
	}
	if result.Status != repository.StatusOpen {
		t.Fatalf("status = %s, want open", result.Status)
	}
}

func TestUpdateStatusCancelNotifiesWithCancelledWording(t *testing.T) {
	quoter := uuid.New()
	svc, store, notifier, _ := statusFixture(repository.StatusInDiscussion, []uuid.UUID{quoter})

	result, err := svc.UpdateStatus(context.Background(), "sub_1", store.sr.ID, repository.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != repository.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", result.Status)
	}
	if store.statusSet == nil || *store.statusSet != repository.StatusCancelled {
		t.Fatal("expected the cancelled status to be written")
	}
	if len(notifier.delivered) != 1 || notifier.delivered[0].UserID != quoter {
		t.Fatalf("expected the quoter notified, got %d rows", len(notifier.delivered))
	}
	if notifier.delivered[0].Title != "Request cancelled" {
		t.Fatalf("title = %q, want %q", notifier.delivered[0].Title, "Request cancelled")
	}
}
