package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// scheduleDB is the slice of pgx used by the repository; pgxmock satisfies it
// in tests.
type scheduleDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists working-hours windows in Postgres.
type Repository struct {
	db scheduleDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("schedule: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db scheduleDB) *Repository {
	return &Repository{db: db}
}

// Upsert creates or replaces the window for (professional, weekday).
func (r *Repository) Upsert(ctx context.Context, w *WorkingHours) (*WorkingHours, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO working_hours (id, professional_id, weekday, opens_at, closes_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (professional_id, weekday)
		DO UPDATE SET opens_at = EXCLUDED.opens_at, closes_at = EXCLUDED.closes_at
		RETURNING id, professional_id, weekday, opens_at, closes_at`,
		w.ID, w.ProfessionalID, int(w.Weekday), w.OpensAt, w.ClosesAt)

	var out WorkingHours
	var weekday int
	if err := row.Scan(&out.ID, &out.ProfessionalID, &weekday, &out.OpensAt, &out.ClosesAt); err != nil {
		return nil, fmt.Errorf("schedule: upsert window: %w", err)
	}
	out.Weekday = time.Weekday(weekday)
	return &out, nil
}

// List returns the professional's windows ordered Sunday through Saturday.
func (r *Repository) List(ctx context.Context, professionalID uuid.UUID) ([]WorkingHours, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, professional_id, weekday, opens_at, closes_at
		FROM working_hours
		WHERE professional_id = $1
		ORDER BY weekday, opens_at`,
		professionalID)
	if err != nil {
		return nil, fmt.Errorf("schedule: list windows: %w", err)
	}
	defer rows.Close()

	var out []WorkingHours
	for rows.Next() {
		var w WorkingHours
		var weekday int
		if err := rows.Scan(&w.ID, &w.ProfessionalID, &weekday, &w.OpensAt, &w.ClosesAt); err != nil {
			return nil, fmt.Errorf("schedule: scan window: %w", err)
		}
		w.Weekday = time.Weekday(weekday)
		out = append(out, w)
	}
	return out, rows.Err()
}

// ResolveWindow maps a calendar date to the weekday window for that
// professional. ErrNoWindow means the professional is closed that day.
func (r *Repository) ResolveWindow(ctx context.Context, professionalID uuid.UUID, date time.Time) (*WorkingHours, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, professional_id, weekday, opens_at, closes_at
		FROM working_hours
		WHERE professional_id = $1 AND weekday = $2`,
		professionalID, int(date.Weekday()))

	var w WorkingHours
	var weekday int
	if err := row.Scan(&w.ID, &w.ProfessionalID, &weekday, &w.OpensAt, &w.ClosesAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoWindow
		}
		return nil, fmt.Errorf("schedule: resolve window: %w", err)
	}
	w.Weekday = time.Weekday(weekday)
	return &w, nil
}

// Delete removes the window for (professional, weekday).
func (r *Repository) Delete(ctx context.Context, professionalID uuid.UUID, weekday time.Weekday) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM working_hours WHERE professional_id = $1 AND weekday = $2`,
		professionalID, int(weekday))
	if err != nil {
		return fmt.Errorf("schedule: delete window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoWindow
	}
	return nil
}
