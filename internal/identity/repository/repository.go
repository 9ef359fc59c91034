package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"handylink_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userNotFoundMsg = "user not found"

const userColumns = `
	id, subject_id, email, full_name, avatar_url, role, is_suspended, is_admin,
	plan, plan_updated_at, polar_customer_id,
	stripe_connect_account_id, stripe_charges_enabled, stripe_payouts_enabled,
	stripe_details_submitted, stripe_onboarded_at, created_at`

// Repository provides database operations for user records.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new identity repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.SubjectID, &u.Email, &u.FullName, &u.AvatarURL, &u.Role,
		&u.IsSuspended, &u.IsAdmin,
		&u.Plan, &u.PlanUpdatedAt, &u.PolarCustomerID,
		&u.StripeConnectAccountID, &u.StripeChargesEnabled, &u.StripePayoutsEnabled,
		&u.StripeDetailsSubmitted, &u.StripeOnboardedAt, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetBySubject resolves an identity-provider subject id to a user record.
// Returns (nil, nil) when no user exists for the subject.
func (r *Repository) GetBySubject(ctx context.Context, subjectID string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE subject_id = $1`, subjectID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by subject: %w", err)
	}
	return u, nil
}

// GetByID fetches a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(userNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByConnectAccountID fetches a user by Stripe Connect account id.
// Returns (nil, nil) when no user carries the account id.
func (r *Repository) GetByConnectAccountID(ctx context.Context, accountID string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE stripe_connect_account_id = $1`, accountID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by connect account: %w", err)
	}
	return u, nil
}

// CreateParams holds the fields required to register a user.
type CreateParams struct {
	SubjectID string
	Email     string
	FullName  string
	AvatarURL *string
	Role      Role
}

// Create inserts a new user. Registration is idempotent at the service layer;
// the unique constraint on subject_id backstops concurrent first calls.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, subject_id, email, full_name, avatar_url, role,
			is_suspended, is_admin, plan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, false, 'free', $7)
		RETURNING `+userColumns,
		uuid.New(), p.SubjectID, p.Email, p.FullName, p.AvatarURL, p.Role, time.Now())
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdateProfile patches the caller-editable profile fields. Nil pointers
// leave the stored value untouched.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, avatarURL *string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			full_name = COALESCE($2, full_name),
			avatar_url = COALESCE($3, avatar_url)
		WHERE id = $1
		RETURNING `+userColumns,
		id, fullName, avatarURL)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(userNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// SetSuspended flips the suspension flag (admin moderation).
func (r *Repository) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_suspended = $2 WHERE id = $1`, id, suspended)
	if err != nil {
		return fmt.Errorf("set suspended: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(userNotFoundMsg)
	}
	return nil
}

// GrantAdmin promotes a user to admin.
func (r *Repository) GrantAdmin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET is_admin = true, role = 'admin' WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}

// SaveConnectAccount stores a newly created Connect account id and resets the
// onboarding flags. The external account was already created; this is the
// second, local half of a two-step protocol.
func (r *Repository) SaveConnectAccount(ctx context.Context, id uuid.UUID, accountID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET
			stripe_connect_account_id = $2,
			stripe_charges_enabled = false,
			stripe_payouts_enabled = false,
			stripe_details_submitted = false,
			stripe_onboarded_at = NULL
		WHERE id = $1`, id, accountID)
	if err != nil {
		return fmt.Errorf("save connect account: %w", err)
	}
	return nil
}

// ConnectStatus carries the capability flags reported by the payment provider.
type ConnectStatus struct {
	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool
}

// SaveConnectStatus updates the onboarding flags for a user. onboardedAt is
// stamped only when details were submitted and no stamp exists yet.
func (r *Repository) SaveConnectStatus(ctx context.Context, id uuid.UUID, st ConnectStatus) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET
			stripe_charges_enabled = $2,
			stripe_payouts_enabled = $3,
			stripe_details_submitted = $4,
			stripe_onboarded_at = CASE
				WHEN $4 AND stripe_onboarded_at IS NULL THEN now()
				WHEN NOT $4 THEN NULL
				ELSE stripe_onboarded_at
			END
		WHERE id = $1`,
		id, st.ChargesEnabled, st.PayoutsEnabled, st.DetailsSubmitted)
	if err != nil {
		return fmt.Errorf("save connect status: %w", err)
	}
	return nil
}

// ApplyPlanBySubject sets the billing plan for the user with the given
// identity-provider subject. Returns (false, nil) when no such user exists;
// billing webhooks for unknown customers are acknowledged, not retried.
func (r *Repository) ApplyPlanBySubject(ctx context.Context, subjectID string, plan Plan, polarCustomerID *string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			plan = $2,
			plan_updated_at = now(),
			polar_customer_id = COALESCE($3, polar_customer_id)
		WHERE subject_id = $1`,
		subjectID, plan, polarCustomerID)
	if err != nil {
		return false, fmt.Errorf("apply plan: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
