package service

import (
	"context"
	"testing"
	"time"

	notifrepo "handylink_backend/internal/notifications/repository"
	quoterepo "handylink_backend/internal/quotes/repository"
	requestrepo "handylink_backend/internal/requests/repository"
	"handylink_backend/platform/logger"

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

type testRequests struct {
	sr *requestrepo.ServiceRequest

	markedPaid    bool
	acceptedQuote *uuid.UUID
	reset         bool
}

func (r *testRequests) GetByID(context.Context, uuid.UUID) (*requestrepo.ServiceRequest, error) {
	return r.sr, nil
}
func (r *testRequests) GetByIDTx(context.Context, pgx.Tx, uuid.UUID) (*requestrepo.ServiceRequest, error) {
	return r.sr, nil
}
func (r *testRequests) SetStatusTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, status requestrepo.Status) error {
	r.sr.Status = status
	return nil
}
func (r *testRequests) TouchUpdatedTx(context.Context, pgx.Tx, uuid.UUID) error { return nil }
func (r *testRequests) AcceptQuoteTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, quoteID uuid.UUID) error {
	r.acceptedQuote = &quoteID
	r.sr.Status = requestrepo.StatusAccepted
	return nil
}
func (r *testRequests) MarkProcessingTx(context.Context, pgx.Tx, uuid.UUID, string, int64, int64) error {
	r.sr.PaymentStatus = requestrepo.PaymentProcessing
	return nil
}
func (r *testRequests) MarkPaidTx(context.Context, pgx.Tx, uuid.UUID, *string, time.Time) error {
	r.markedPaid = true
	r.sr.PaymentStatus = requestrepo.PaymentPaid
	return nil
}
func (r *testRequests) ResetPaymentTx(context.Context, pgx.Tx, uuid.UUID) error {
	r.reset = true
	r.sr.PaymentStatus = requestrepo.PaymentUnpaid
	r.sr.CheckoutSessionID = nil
	return nil
}

type testQuotes struct {
	quote *quoterepo.Quote

	acceptedOne bool
}

func (q *testQuotes) GetByID(context.Context, uuid.UUID) (*quoterepo.Quote, error) {
	return q.quote, nil
}
func (q *testQuotes) GetByIDTx(context.Context, pgx.Tx, uuid.UUID) (*quoterepo.Quote, error) {
	return q.quote, nil
}
func (q *testQuotes) ListByProvider(context.Context, uuid.UUID) ([]quoterepo.Quote, error) {
	return nil, nil
}
func (q *testQuotes) ExistsForProviderTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}
func (q *testQuotes) CreateTx(context.Context, pgx.Tx, quoterepo.CreateParams) (*quoterepo.Quote, error) {
	return q.quote, nil
}
func (q *testQuotes) SetStatusTx(context.Context, pgx.Tx, uuid.UUID, quoterepo.Status) error {
	return nil
}
func (q *testQuotes) AcceptOneDeclineRestTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID) error {
	q.acceptedOne = true
	q.quote.Status = quoterepo.StatusAccepted
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

func strptr(s string) *string { return &s }

func finalizeFixture(paymentStatus requestrepo.PaymentStatus, storedSession *string) (*Service, *testRequests, *testQuotes, *testNotifier, FinalizeParams) {
	requestID := uuid.New()
	quoteID := uuid.New()

	reqs := &testRequests{sr: &requestrepo.ServiceRequest{
		ID:                requestID,
		ClientID:          uuid.New(),
		Title:             "Fix the sink",
		Status:            requestrepo.StatusInDiscussion,
		PaymentStatus:     paymentStatus,
		CheckoutSessionID: storedSession,
	}}
	quotes := &testQuotes{quote: &quoterepo.Quote{
		ID:          quoteID,
		RequestID:   requestID,
		ProviderID:  uuid.New(),
		AmountCents: 10000,
		Status:      quoterepo.StatusPending,
	}}
	notifier := &testNotifier{}

	svc := New(testDB{}, reqs, quotes, nil, notifier, nil, nil, nil, logger.New("test"))
	return svc, reqs, quotes, notifier, FinalizeParams{
		SessionID: "cs_live_1",
		RequestID: requestID,
		QuoteID:   quoteID,
	}
}

func TestFinalizeAcceptsQuoteAndMarksPaid(t *testing.T) {
	svc, reqs, quotes, notifier, params := finalizeFixture(requestrepo.PaymentProcessing, strptr("cs_live_1"))

	if err := svc.Finalize(context.Background(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reqs.markedPaid {
		t.Fatal("expected the request to be marked paid")
	}
	if !quotes.acceptedOne {
		t.Fatal("expected accept-one-decline-rest to run")
	}
	if reqs.acceptedQuote == nil || *reqs.acceptedQuote != params.QuoteID {
		t.Fatal("expected the paid quote to be recorded on the request")
	}
	if len(notifier.delivered) != 1 || notifier.published != 1 {
		t.Fatalf("expected one payment notification, delivered=%d published=%d",
			len(notifier.delivered), notifier.published)
	}
}

func TestFinalizeAlreadyPaidIsNoOp(t *testing.T) {
	svc, reqs, quotes, notifier, params := finalizeFixture(requestrepo.PaymentPaid, strptr("cs_live_1"))

	if err := svc.Finalize(context.Background(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reqs.markedPaid || quotes.acceptedOne || len(notifier.delivered) != 0 {
		t.Fatal("a second delivery for a paid request must write nothing")
	}
}

func TestFinalizeDifferentStoredSessionIsNoOp(t *testing.T) {
	svc, reqs, quotes, _, params := finalizeFixture(requestrepo.PaymentProcessing, strptr("cs_live_other"))

	if err := svc.Finalize(context.Background(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reqs.markedPaid || quotes.acceptedOne {
		t.Fatal("a delivery for a superseded session must write nothing")
	}
}

func TestFinalizeProceedsWhenStoredSessionCleared(t *testing.T) {
	// Cancel and the expiry sweep null the stored session id, but the
	// customer's checkout tab can still complete the payment. The charge
	// is real, so the delivery must settle the request.
	svc, reqs, quotes, _, params := finalizeFixture(requestrepo.PaymentUnpaid, nil)

	if err := svc.Finalize(context.Background(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reqs.markedPaid || !quotes.acceptedOne {
		t.Fatal("a paid session with no stored id must still finalize")
	}
}

func TestFinalizeRejectsAmountMismatch(t *testing.T) {
	svc, reqs, _, _, params := finalizeFixture(requestrepo.PaymentProcessing, strptr("cs_live_1"))

	within := int64(10002)
	params.AmountTotal = &within
	if err := svc.Finalize(context.Background(), params); err != nil {
		t.Fatalf("a total within tolerance must pass: %v", err)
	}

	svc, reqs, _, _, params = finalizeFixture(requestrepo.PaymentProcessing, strptr("cs_live_1"))
	beyond := int64(10003)
	params.AmountTotal = &beyond
	if err := svc.Finalize(context.Background(), params); err == nil {
		t.Fatal("a total beyond tolerance must fail")
	}
	if reqs.markedPaid {
		t.Fatal("a mismatched charge must not mark the request paid")
	}
}

func TestFinalizeRejectsForeignCurrency(t *testing.T) {
	svc, reqs, _, _, params := finalizeFixture(requestrepo.PaymentProcessing, strptr("cs_live_1"))

	eur := "eur"
	params.Currency = &eur
	if err := svc.Finalize(context.Background(), params); err == nil {
		t.Fatal("a non-usd charge must fail")
	}
	if reqs.markedPaid {
		t.Fatal("a foreign-currency charge must not mark the request paid")
	}
}

func TestResetExpiredAfterPaidIsNoOp(t *testing.T) {
	svc, reqs, _, _, params := finalizeFixture(requestrepo.PaymentPaid, strptr("cs_live_1"))

	if err := svc.ResetExpired(context.Background(), params.RequestID, params.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reqs.reset {
		t.Fatal("an expiry racing a completed payment must not reset the request")
	}
}

func TestResetExpiredClearsProcessingState(t *testing.T) {
	svc, reqs, _, _, params := finalizeFixture(requestrepo.PaymentProcessing, strptr("cs_live_1"))

	if err := svc.ResetExpired(context.Background(), params.RequestID, params.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reqs.reset {
		t.Fatal("expected the processing state to be cleared")
	}
}
