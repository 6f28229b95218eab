// Package stats computes the dashboard numbers a professional sees: how many
// appointments landed in each status over a period, revenue from completed
// visits and how busy today is.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Period bounds the stats query window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Valid reports whether the period is one of day, week or month.
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// Bounds returns the half-open [start, end) window for the period containing
// now. Weeks start on Sunday to match the weekday numbering used by working
// hours.
func (p Period) Bounds(now time.Time) (start, end time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodWeek:
		start = day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}

// Summary is the dashboard payload for one professional and period.
// Completed counts both explicitly completed appointments and confirmed or
// in-progress ones whose end has already passed.
type Summary struct {
	Period        Period    `json:"period"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Total         int64     `json:"total"`
	Scheduled     int64     `json:"scheduled"`
	Confirmed     int64     `json:"confirmed"`
	Completed     int64     `json:"completed"`
	Cancelled     int64     `json:"cancelled"`
	NoShow        int64     `json:"no_show"`
	RevenueCents  int64     `json:"revenue_cents"`
	TodayTotal    int64     `json:"today_total"`
	TodayUpcoming int64     `json:"today_upcoming"`
}

type statsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository aggregates appointment stats straight in Postgres.
type Repository struct {
	db statsDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("stats: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db statsDB) *Repository {
	return &Repository{db: db}
}

// summaryQuery folds status derivation into the aggregation: a confirmed or
// in-progress appointment whose end is already past counts as completed, and
// its service price counts as revenue. $1 professional, $2/$3 period window,
// $4 now, $5/$6 today's window.
const summaryQuery = `
	SELECT
		COUNT(*) FILTER (WHERE a.start_at >= $2 AND a.start_at < $3),
		COUNT(*) FILTER (WHERE a.start_at >= $2 AND a.start_at < $3
			AND a.status = 'scheduled' AND a.end_at >= $4),
		COUNT(*) FILTER (WHERE a.start_at >= $2 AND a.start_at < $3
			AND a.status IN ('confirmed', 'in_progress') AND a.end_at >= $4),
		COUNT(*) FILTER (WHERE a.start_at >= $2 AND a.start_at < $3
			AND (a.status = 'completed'
				OR (a.status NOT IN ('cancelled', 'no_show') AND a.end_at < $4))),
		COUNT(*) FILTER (WHERE a.start_at >= $2 AND a.start_at < $3
			AND a.status = 'cancelled'),
		COUNT(*) FILTER (WHERE a.start_at >= $2 AND a.start_at < $3
			AND a.status = 'no_show'),
		COALESCE(SUM(s.price_cents) FILTER (WHERE a.start_at >= $2 AND a.start_at < $3
			AND (a.status = 'completed'
				OR (a.status NOT IN ('cancelled', 'no_show') AND a.end_at < $4))), 0),
		COUNT(*) FILTER (WHERE a.start_at >= $5 AND a.start_at < $6
			AND a.status NOT IN ('cancelled', 'no_show')),
		COUNT(*) FILTER (WHERE a.start_at >= $5 AND a.start_at < $6
			AND a.status NOT IN ('cancelled', 'no_show') AND a.start_at >= $4)
	FROM appointments a
	JOIN services s ON s.id = a.service_id
	WHERE a.professional_id = $1`

// Summarize computes the dashboard summary for the period containing now.
func (r *Repository) Summarize(ctx context.Context, professionalID uuid.UUID, period Period, now time.Time) (*Summary, error) {
	if !period.Valid() {
		period = PeriodDay
	}
	from, to := period.Bounds(now)
	todayFrom, todayTo := PeriodDay.Bounds(now)

	row := r.db.QueryRow(ctx, summaryQuery, professionalID, from, to, now, todayFrom, todayTo)

	out := Summary{Period: period, From: from, To: to}
	err := row.Scan(&out.Total, &out.Scheduled, &out.Confirmed, &out.Completed,
		&out.Cancelled, &out.NoShow, &out.RevenueCents, &out.TodayTotal, &out.TodayUpcoming)
	if err != nil {
		return nil, fmt.Errorf("stats: summarize: %w", err)
	}
	return &out, nil
}
