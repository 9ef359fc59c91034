package service

import (
	"context"
	"math"

	identityrepo "handylink_backend/internal/identity/repository"
	notifrepo "handylink_backend/internal/notifications/repository"
	notifsvc "handylink_backend/internal/notifications/service"
	providerrepo "handylink_backend/internal/providers/repository"
	quoterepo "handylink_backend/internal/quotes/repository"
	"handylink_backend/internal/requests/repository"
	"handylink_backend/internal/requests/transport"
	"handylink_backend/platform/apperr"
	"handylink_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store is the request persistence slice this service needs.
type Store interface {
	repository.Reader
	repository.StatusWriter
	Create(ctx context.Context, p repository.CreateParams) (*repository.ServiceRequest, error)
	List(ctx context.Context, p repository.ListParams) ([]repository.ServiceRequest, error)
	ListOpenForProvider(ctx context.Context, cities, categories []string, limit int) ([]repository.ServiceRequest, error)
}

// QuoteStore is the quote persistence slice this service needs.
type QuoteStore interface {
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*quoterepo.Quote, error)
	HasQuoteFrom(ctx context.Context, requestID, providerID uuid.UUID) (bool, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]quoterepo.Quote, error)
	QuoterIDsTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) ([]uuid.UUID, error)
}

// ProviderStore reads provider profiles for visibility checks.
type ProviderStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*providerrepo.Profile, error)
}

// Identity resolves users. Implemented by the identity service.
type Identity interface {
	RequireUser(ctx context.Context, subjectID string) (*identityrepo.User, error)
}

// Notifier writes notification rows in the caller's transaction and
// publishes them after commit. Implemented by the notifications service.
type Notifier interface {
	DeliverTx(ctx context.Context, tx pgx.Tx, rows []notifrepo.Row) ([]notifrepo.Notification, error)
	Publish(ctx context.Context, created []notifrepo.Notification)
}

// Service implements the service-request lifecycle.
type Service struct {
	pool      db.Beginner
	repo      Store
	quotes    QuoteStore
	providers ProviderStore
	identity  Identity
	notifier  Notifier
}

// New creates the requests service.
func New(pool db.Beginner, repo Store, quotes QuoteStore, providers ProviderStore, identity Identity, notifier Notifier) *Service {
	return &Service{
		pool:      pool,
		repo:      repo,
		quotes:    quotes,
		providers: providers,
		identity:  identity,
		notifier:  notifier,
	}
}

func centsFromDollars(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Create posts a new open request. Clients post their own; admins may
// post too.
func (s *Service) Create(ctx context.Context, subject string, req transport.CreateRequest) (*repository.ServiceRequest, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := identityrepo.RequireRole(user, identityrepo.RoleClient); err != nil {
		return nil, err
	}

	p := repository.CreateParams{
		ClientID:     user.ID,
		CategorySlug: req.CategorySlug,
		Title:        req.Title,
		Description:  req.Description,
		Photos:       req.Photos,
		Lat:          req.Lat,
		Lng:          req.Lng,
		Address:      req.Address,
		City:         req.City,
		Urgency:      req.Urgency,
	}
	if req.BudgetMin != nil {
		v := centsFromDollars(*req.BudgetMin)
		p.BudgetMinCents = &v
	}
	if req.BudgetMax != nil {
		v := centsFromDollars(*req.BudgetMax)
		p.BudgetMaxCents = &v
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}

	return s.repo.Create(ctx, p)
}

// List returns requests scoped to the caller's role: clients see their
// own, providers see open requests in their service areas and
// categories, admins see everything with optional filters.
func (s *Service) List(ctx context.Context, subject string, filter transport.ListFilter) ([]repository.ServiceRequest, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	switch {
	case user.IsAdmin:
		return s.repo.List(ctx, repository.ListParams{
			Status:       repository.Status(filter.Status),
			CategorySlug: filter.Category,
			City:         filter.City,
			Limit:        filter.Limit,
		})
	case user.Role == identityrepo.RoleProvider:
		profile, err := s.providers.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if profile == nil || len(profile.ServiceAreas) == 0 || len(profile.Categories) == 0 {
			return []repository.ServiceRequest{}, nil
		}
		return s.repo.ListOpenForProvider(ctx, profile.ServiceAreas, profile.Categories, filter.Limit)
	default:
		return s.repo.List(ctx, repository.ListParams{ClientID: &user.ID, Limit: filter.Limit})
	}
}

// Detail is a request together with the quotes visible to the caller.
type Detail struct {
	Request *repository.ServiceRequest `json:"request"`
	Quotes  []quoterepo.Quote          `json:"quotes"`
}

// Get returns one request with caller-scoped quote visibility: the owner
// and admins see every quote, a provider sees only their own.
func (s *Service) Get(ctx context.Context, subject string, id uuid.UUID) (*Detail, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	sr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := sr.ClientID == user.ID
	if !isOwner && !user.IsAdmin {
		allowed, err := s.providerMaySee(ctx, user, sr)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperr.Forbidden("forbidden")
		}
	}

	all, err := s.quotes.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	visible := all
	if !isOwner && !user.IsAdmin {
		visible = make([]quoterepo.Quote, 0, 1)
		for _, q := range all {
			if q.ProviderID == user.ID {
				visible = append(visible, q)
			}
		}
	}

	return &Detail{Request: sr, Quotes: visible}, nil
}

// providerMaySee checks whether a provider may view a request: either
// they already quoted on it, or it falls in their service area and
// categories.
func (s *Service) providerMaySee(ctx context.Context, user *identityrepo.User, sr *repository.ServiceRequest) (bool, error) {
	if user.Role != identityrepo.RoleProvider {
		return false, nil
	}

	quoted, err := s.quotes.HasQuoteFrom(ctx, sr.ID, user.ID)
	if err != nil {
		return false, err
	}
	if quoted {
		return true, nil
	}

	profile, err := s.providers.GetByUserID(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if profile == nil || sr.City == nil {
		return false, nil
	}
	return contains(profile.ServiceAreas, *sr.City) && contains(profile.Categories, sr.CategorySlug), nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// UpdateStatus applies one status transition inside a single transaction
// and fans out notifications for the change. Setting the current status
// again still bumps updatedAt but notifies nobody.
func (s *Service) UpdateStatus(ctx context.Context, subject string, id uuid.UUID, next repository.Status) (*repository.ServiceRequest, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	var result *repository.ServiceRequest
	var created []notifrepo.Notification

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		sr, err := s.repo.GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if sr.ClientID != user.ID && !user.IsAdmin {
			return apperr.Forbidden("forbidden")
		}
		if sr.Status == next {
			if err := s.repo.TouchUpdatedTx(ctx, tx, id); err != nil {
				return err
			}
			result = sr
			return nil
		}
		if err := validateTransition(sr, next, user.IsAdmin); err != nil {
			return err
		}
		if err := s.repo.SetStatusTx(ctx, tx, id, next); err != nil {
			return err
		}

		rows, err := s.statusChangeRows(ctx, tx, sr, next, user)
		if err != nil {
			return err
		}
		created, err = s.notifier.DeliverTx(ctx, tx, rows)
		if err != nil {
			return err
		}

		updated := *sr
		updated.Status = next
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, created)
	return result, nil
}

func (s *Service) statusChangeRows(ctx context.Context, tx pgx.Tx, sr *repository.ServiceRequest, next repository.Status, actor *identityrepo.User) ([]notifrepo.Row, error) {
	quoterIDs, err := s.quotes.QuoterIDsTx(ctx, tx, sr.ID)
	if err != nil {
		return nil, err
	}

	var acceptedProvider *uuid.UUID
	if sr.AcceptedQuoteID != nil {
		q, err := s.quotes.GetByIDTx(ctx, tx, *sr.AcceptedQuoteID)
		if err != nil {
			return nil, err
		}
		acceptedProvider = &q.ProviderID
	}

	title, body := statusChangeText(sr.Title, next)
	return notifsvc.StatusChangeRows(notifsvc.StatusChange{
		RequestID:          sr.ID,
		ClientID:           sr.ClientID,
		ActorID:            actor.ID,
		ActorAdmin:         actor.IsAdmin,
		OldStatus:          string(sr.Status),
		NewStatus:          string(next),
		QuoterIDs:          quoterIDs,
		AcceptedProviderID: acceptedProvider,
	}, title, body), nil
}

func statusChangeText(requestTitle string, next repository.Status) (string, string) {
	switch next {
	case repository.StatusCancelled:
		return "Request cancelled", "The request \"" + requestTitle + "\" was cancelled."
	case repository.StatusCompleted:
		return "Request completed", "The request \"" + requestTitle + "\" was marked completed."
	case repository.StatusAccepted:
		return "Request accepted", "The request \"" + requestTitle + "\" was accepted."
	}
	return "Request updated", "The request \"" + requestTitle + "\" was updated."
}
