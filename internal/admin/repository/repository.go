package repository

import (
	"context"
	"fmt"

	"handylink_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opStats    = "admin.repository.stats"
	opUsers    = "admin.repository.users"
	opOverview = "admin.repository.users_overview"
)

// histogramDays is the day window for the dashboard histograms.
const histogramDays = 14

// Repository runs the admin read-side queries over the shared pool.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates an admin repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Stats collects the dashboard snapshot: totals, completion rate and
// the recent signup/request histograms.
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	var st Stats

	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE role = 'client'),
		       count(*) FILTER (WHERE role = 'provider'),
		       count(*) FILTER (WHERE is_suspended)
		FROM users
	`).Scan(&st.TotalUsers, &st.TotalClients, &st.TotalProviders, &st.SuspendedUsers)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("user stats failed: %v", err)).WithOp(opStats)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'open'),
		       count(*) FILTER (WHERE status = 'completed')
		FROM service_requests
	`).Scan(&st.TotalRequests, &st.OpenRequests, &st.CompletedRequests)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("request stats failed: %v", err)).WithOp(opStats)
	}
	if st.TotalRequests > 0 {
		st.CompletionRate = float64(st.CompletedRequests) / float64(st.TotalRequests)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT (SELECT count(*) FROM quotes), (SELECT count(*) FROM reviews)`,
	).Scan(&st.TotalQuotes, &st.TotalReviews)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("volume stats failed: %v", err)).WithOp(opStats)
	}

	st.SignupsByDay, err = r.dayHistogram(ctx, "users")
	if err != nil {
		return nil, err
	}
	st.RequestsByDay, err = r.dayHistogram(ctx, "service_requests")
	if err != nil {
		return nil, err
	}

	st.ByCategory, err = r.categoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// dayHistogram buckets a table's created_at by day over the recent
// window. The table name is one of two fixed literals, never input.
func (r *Repository) dayHistogram(ctx context.Context, table string) ([]DayCount, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT date_trunc('day', created_at) AS day, count(*)
		FROM %s
		WHERE created_at >= now() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day
	`, table), histogramDays)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("histogram query failed: %v", err)).WithOp(opStats)
	}
	defer rows.Close()

	items := make([]DayCount, 0, histogramDays)
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan histogram bucket failed: %v", err)).WithOp(opStats)
		}
		items = append(items, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate histogram failed: %v", err)).WithOp(opStats)
	}
	return items, nil
}

func (r *Repository) categoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category_slug, count(*)
		FROM service_requests
		GROUP BY category_slug
		ORDER BY count(*) DESC, category_slug
	`)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("category counts failed: %v", err)).WithOp(opStats)
	}
	defer rows.Close()

	items := make([]CategoryCount, 0)
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.CategorySlug, &cc.Count); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan category count failed: %v", err)).WithOp(opStats)
		}
		items = append(items, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate category counts failed: %v", err)).WithOp(opStats)
	}
	return items, nil
}

// ListUsers searches users with optional full-text query and role
// filter, newest first.
func (r *Repository) ListUsers(ctx context.Context, p UserListParams) ([]UserRow, error) {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}

	query := `
		SELECT id, role, full_name, email, plan, is_admin, is_suspended, created_at
		FROM users
		WHERE 1=1`
	args := make([]any, 0, 3)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Query != "" {
		query += fmt.Sprintf(
			` AND to_tsvector('simple', full_name || ' ' || email) @@ plainto_tsquery('simple', %s)`,
			arg(p.Query))
	}
	if p.Role != "" {
		query += fmt.Sprintf(` AND role = %s`, arg(p.Role))
	}
	query += ` ORDER BY created_at DESC LIMIT ` + arg(p.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list users failed: %v", err)).WithOp(opUsers)
	}
	defer rows.Close()

	items := make([]UserRow, 0, p.Limit)
	for rows.Next() {
		var u UserRow
		err := rows.Scan(&u.ID, &u.Role, &u.FullName, &u.Email, &u.Plan, &u.IsAdmin, &u.IsSuspended, &u.CreatedAt)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan user row failed: %v", err)).WithOp(opUsers)
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate user rows failed: %v", err)).WithOp(opUsers)
	}
	return items, nil
}

// UsersOverview returns the headline user counts.
func (r *Repository) UsersOverview(ctx context.Context) (*UsersOverview, error) {
	var ov UsersOverview
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE role = 'client'),
		       count(*) FILTER (WHERE role = 'provider'),
		       count(*) FILTER (WHERE is_admin),
		       count(*) FILTER (WHERE is_suspended),
		       count(*) FILTER (WHERE plan = 'pro'),
		       count(*) FILTER (WHERE created_at >= now() - interval '7 days')
		FROM users
	`).Scan(&ov.Total, &ov.Clients, &ov.Providers, &ov.Admins, &ov.Suspended, &ov.ProPlan, &ov.NewThisWeek)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("users overview failed: %v", err)).WithOp(opOverview)
	}
	return &ov, nil
}
