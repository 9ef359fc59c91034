package service

import (
	"context"
	"testing"

	identityrepo "handylink_backend/internal/identity/repository"
	notifrepo "handylink_backend/internal/notifications/repository"
	"handylink_backend/internal/quotes/repository"
	"handylink_backend/internal/quotes/transport"
	requestrepo "handylink_backend/internal/requests/repository"

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
	quote  *repository.Quote
	exists bool

	created *repository.CreateParams
}

func (s *testStore) GetByID(context.Context, uuid.UUID) (*repository.Quote, error) {
	return s.quote, nil
}
func (s *testStore) GetByIDTx(context.Context, pgx.Tx, uuid.UUID) (*repository.Quote, error) {
	return s.quote, nil
}
func (s *testStore) ListByProvider(context.Context, uuid.UUID) ([]repository.Quote, error) {
	return nil, nil
}
func (s *testStore) ExistsForProviderTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID) (bool, error) {
	return s.exists, nil
}
func (s *testStore) CreateTx(_ context.Context, _ pgx.Tx, p repository.CreateParams) (*repository.Quote, error) {
	s.created = &p
	return &repository.Quote{
		ID:          uuid.New(),
		RequestID:   p.RequestID,
		ProviderID:  p.ProviderID,
		AmountCents: p.AmountCents,
		Message:     p.Message,
		Status:      repository.StatusPending,
	}, nil
}
func (s *testStore) SetStatusTx(context.Context, pgx.Tx, uuid.UUID, repository.Status) error {
	return nil
}
func (s *testStore) AcceptOneDeclineRestTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID) error {
	return nil
}

type testRequests struct {
	sr *requestrepo.ServiceRequest

	statusSet *requestrepo.Status
	touched   bool
}

func (r *testRequests) GetByID(context.Context, uuid.UUID) (*requestrepo.ServiceRequest, error) {
	return r.sr, nil
}
func (r *testRequests) GetByIDTx(context.Context, pgx.Tx, uuid.UUID) (*requestrepo.ServiceRequest, error) {
	return r.sr, nil
}
func (r *testRequests) SetStatusTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, status requestrepo.Status) error {
	r.statusSet = &status
	return nil
}
func (r *testRequests) TouchUpdatedTx(context.Context, pgx.Tx, uuid.UUID) error {
	r.touched = true
	return nil
}
func (r *testRequests) AcceptQuoteTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID) error {
	return nil
}

type testNotifier struct {
	delivered []notifrepo.Row
	published int
}

func (n *testNotifier) DeliverTx(_ context.Context, _ pgx.Tx, rows []notifrepo.Row) ([]notifrepo.Notification, error) {
	n.delivered = append(n.delivered, rows...)
	return make([]notifrepo.Notification, len(rows)), nil
}
func (n *testNotifier) Publish(_ context.Context, created []notifrepo.Notification) {
	n.published += len(created)
}

func submitFixture(status requestrepo.Status, alreadyQuoted bool) (*Service, *testStore, *testRequests, *testNotifier, transport.SubmitRequest) {
	requestID := uuid.New()
	provider := &identityrepo.User{
		ID:       uuid.New(),
		Role:     identityrepo.RoleProvider,
		FullName: "Pat the Plumber",
	}

	store := &testStore{exists: alreadyQuoted}
	reqs := &testRequests{sr: &requestrepo.ServiceRequest{
		ID:       requestID,
		ClientID: uuid.New(),
		Title:    "Fix the sink",
		Status:   status,
	}}
	notifier := &testNotifier{}

	svc := New(testDB{}, store, reqs, testIdentity{user: provider}, notifier)
	return svc, store, reqs, notifier, transport.SubmitRequest{
		RequestID: requestID.String(),
		Amount:    150,
		Message:   "Can do it tomorrow",
	}
}

func TestSubmitMovesOpenRequestToInDiscussion(t *testing.T) {
	svc, store, reqs, notifier, req := submitFixture(requestrepo.StatusOpen, false)

	quote, err := svc.Submit(context.Background(), "sub_1", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.AmountCents != 15000 {
		t.Fatalf("amount = %d cents, want 15000", quote.AmountCents)
	}
	if store.created == nil {
		t.Fatal("expected the quote to be written")
	}
	if reqs.statusSet == nil || *reqs.statusSet != requestrepo.StatusInDiscussion {
		t.Fatal("expected the open request to move to in_discussion")
	}
	if len(notifier.delivered) != 1 || notifier.delivered[0].Type != notifrepo.TypeNewQuote {
		t.Fatalf("expected one new_quote notification, got %d", len(notifier.delivered))
	}
}

func TestSubmitOnInDiscussionOnlyBumpsUpdatedAt(t *testing.T) {
	svc, _, reqs, _, req := submitFixture(requestrepo.StatusInDiscussion, false)

	if _, err := svc.Submit(context.Background(), "sub_1", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reqs.statusSet != nil {
		t.Fatal("a second quote must not change the request status")
	}
	if !reqs.touched {
		t.Fatal("expected the request's updatedAt to be bumped")
	}
}

func TestSubmitRejectsDuplicateQuote(t *testing.T) {
	svc, store, reqs, notifier, req := submitFixture(requestrepo.StatusOpen, true)

	if _, err := svc.Submit(context.Background(), "sub_1", req); err == nil {
		t.Fatal("expected a second quote from the same provider to be rejected")
	}
	if store.created != nil {
		t.Fatal("a duplicate quote must not be written")
	}
	if reqs.statusSet != nil || len(notifier.delivered) != 0 {
		t.Fatal("a rejected quote must have no side effects")
	}
}

func TestSubmitRejectsClosedRequest(t *testing.T) {
	for _, status := range []requestrepo.Status{requestrepo.StatusCompleted, requestrepo.StatusCancelled} {
		svc, store, _, _, req := submitFixture(status, false)
		if _, err := svc.Submit(context.Background(), "sub_1", req); err == nil {
			t.Fatalf("expected a quote on a %s request to be rejected", status)
		}
		if store.created != nil {
			t.Fatalf("a quote on a %s request must not be written", status)
		}
	}
}
