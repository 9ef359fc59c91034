package repository

import (
	"context"
	"fmt"
	"math"
	"strings"

	"handylink_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opUpsert          = "providers.repository.upsert"
	opGet             = "providers.repository.get"
	opList            = "providers.repository.list"
	opAddImage        = "providers.repository.add_portfolio_image"
	opApplyRating     = "providers.repository.apply_rating"
	opRecomputeRating = "providers.repository.recompute_rating"
	opSetVerified     = "providers.repository.set_verified"
)

const maxListLimit = 100

const profileColumns = `
	id, user_id, bio, categories, service_areas, portfolio_images,
	hourly_rate_min, hourly_rate_max, years_experience,
	is_verified, is_available, avg_rating, review_count,
	lat, lng, address, city, created_at, updated_at`

// Repository provides database operations for provider profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a providers repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Bio, &p.Categories, &p.ServiceAreas, &p.PortfolioImages,
		&p.HourlyRateMinCents, &p.HourlyRateMaxCents, &p.YearsExperience,
		&p.IsVerified, &p.IsAvailable, &p.AvgRating, &p.ReviewCount,
		&p.Lat, &p.Lng, &p.Address, &p.City, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert creates or replaces the caller's profile fields. Derived rating
// fields and the verification flag are never touched here.
func (r *Repository) Upsert(ctx context.Context, p UpsertParams) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO provider_profiles
			(user_id, bio, categories, service_areas, portfolio_images,
			 hourly_rate_min, hourly_rate_max, years_experience, is_available,
			 lat, lng, address, city)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			bio = EXCLUDED.bio,
			categories = EXCLUDED.categories,
			service_areas = EXCLUDED.service_areas,
			portfolio_images = EXCLUDED.portfolio_images,
			hourly_rate_min = EXCLUDED.hourly_rate_min,
			hourly_rate_max = EXCLUDED.hourly_rate_max,
			years_experience = EXCLUDED.years_experience,
			is_available = EXCLUDED.is_available,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			updated_at = now()
		RETURNING `+profileColumns,
		p.UserID, p.Bio, p.Categories, p.ServiceAreas, p.PortfolioImages,
		p.HourlyRateMinCents, p.HourlyRateMaxCents, p.YearsExperience, p.IsAvailable,
		p.Lat, p.Lng, p.Address, p.City,
	)
	profile, err := scanProfile(row)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("upsert provider profile failed: %v", err)).WithOp(opUpsert)
	}
	return profile, nil
}

// GetByUserID returns the user's profile, or nil when none exists.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM provider_profiles WHERE user_id = $1`, userID)
	profile, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, apperr.Internal(fmt.Sprintf("get provider profile failed: %v", err)).WithOp(opGet)
	}
	return profile, nil
}

// AddPortfolioImage appends a stored blob key to the profile's portfolio.
func (r *Repository) AddPortfolioImage(ctx context.Context, userID uuid.UUID, imageKey string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE provider_profiles
		SET portfolio_images = array_append(portfolio_images, $2), updated_at = now()
		WHERE user_id = $1
		RETURNING `+profileColumns, userID, imageKey)
	profile, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("provider profile not found").WithOp(opAddImage)
		}
		return nil, apperr.Internal(fmt.Sprintf("add portfolio image failed: %v", err)).WithOp(opAddImage)
	}
	return profile, nil
}

// SetVerified flips the admin-controlled verification flag.
func (r *Repository) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE provider_profiles SET is_verified = $2, updated_at = now()
		WHERE user_id = $1
	`, userID, verified)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("set provider verified failed: %v", err)).WithOp(opSetVerified)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("provider profile not found").WithOp(opSetVerified)
	}
	return nil
}

// FoldRating folds one new rating into a running weighted average,
// rounded to one decimal. The result matches a full recomputation over
// count+1 rows whose prior average rounds to avg.
func FoldRating(avg float64, count int, rating int) float64 {
	return math.Round((avg*float64(count)+float64(rating))/float64(count+1)*10) / 10
}

// ApplyRatingTx folds one new rating into the running weighted average,
// rounded to one decimal. Runs inside the review-create transaction with
// the profile row locked.
func (r *Repository) ApplyRatingTx(ctx context.Context, tx pgx.Tx, providerUserID uuid.UUID, rating int) error {
	var avg float64
	var count int
	err := tx.QueryRow(ctx, `
		SELECT avg_rating, review_count FROM provider_profiles
		WHERE user_id = $1
		FOR UPDATE
	`, providerUserID).Scan(&avg, &count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperr.NotFound("provider profile not found").WithOp(opApplyRating)
		}
		return apperr.Internal(fmt.Sprintf("read provider rating failed: %v", err)).WithOp(opApplyRating)
	}

	newAvg := FoldRating(avg, count, rating)

	_, err = tx.Exec(ctx, `
		UPDATE provider_profiles
		SET avg_rating = $2, review_count = $3, updated_at = now()
		WHERE user_id = $1
	`, providerUserID, newAvg, count+1)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("apply provider rating failed: %v", err)).WithOp(opApplyRating)
	}
	return nil
}

// RecomputeRatingTx recalculates the average from the remaining review
// rows. Used after a review deletion; exact rather than incremental.
func (r *Repository) RecomputeRatingTx(ctx context.Context, tx pgx.Tx, providerUserID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE provider_profiles p
		SET avg_rating = COALESCE(
				(SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews WHERE provider_id = $1), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE provider_id = $1),
			updated_at = now()
		WHERE p.user_id = $1
	`, providerUserID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("recompute provider rating failed: %v", err)).WithOp(opRecomputeRating)
	}
	return nil
}

// List returns the provider directory. An empty query skips full-text
// search; filters are applied as equality conditions. Suspended users
// never appear.
func (r *Repository) List(ctx context.Context, p ListParams) ([]Listing, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	where := []string{"u.is_suspended = FALSE", "u.role = 'provider'"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(p.Query); q != "" {
		ph := arg(q)
		where = append(where, fmt.Sprintf(`(
			to_tsvector('simple', u.full_name || ' ' || u.email) @@ plainto_tsquery('simple', %s)
			OR to_tsvector('simple', pp.bio) @@ plainto_tsquery('simple', %s))`, ph, ph))
	}
	if p.City != "" {
		where = append(where, "pp.city = "+arg(p.City))
	}
	if p.Category != "" {
		where = append(where, arg(p.Category)+" = ANY(pp.categories)")
	}
	if p.OnlyAvailable {
		where = append(where, "pp.is_available = TRUE")
	}
	if p.OnlyVerified {
		where = append(where, "pp.is_verified = TRUE")
	}

	order := "pp.created_at DESC"
	if p.Sort == "rating" {
		order = "pp.avg_rating DESC, pp.review_count DESC, pp.created_at DESC"
	}

	query := fmt.Sprintf(`
		SELECT pp.id, pp.user_id, pp.bio, pp.categories, pp.service_areas, pp.portfolio_images,
		       pp.hourly_rate_min, pp.hourly_rate_max, pp.years_experience,
		       pp.is_verified, pp.is_available, pp.avg_rating, pp.review_count,
		       pp.lat, pp.lng, pp.address, pp.city, pp.created_at, pp.updated_at,
		       u.full_name, u.avatar_url
		FROM provider_profiles pp
		JOIN users u ON u.id = pp.user_id
		WHERE %s
		ORDER BY %s
		LIMIT %s`, strings.Join(where, " AND "), order, arg(limit))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list providers failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Listing, 0, limit)
	for rows.Next() {
		var l Listing
		err := rows.Scan(
			&l.ID, &l.UserID, &l.Bio, &l.Categories, &l.ServiceAreas, &l.PortfolioImages,
			&l.HourlyRateMinCents, &l.HourlyRateMaxCents, &l.YearsExperience,
			&l.IsVerified, &l.IsAvailable, &l.AvgRating, &l.ReviewCount,
			&l.Lat, &l.Lng, &l.Address, &l.City, &l.CreatedAt, &l.UpdatedAt,
			&l.FullName, &l.AvatarURL,
		)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan provider listing failed: %v", err)).WithOp(opList)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate provider listings failed: %v", err)).WithOp(opList)
	}
	return items, nil
}
