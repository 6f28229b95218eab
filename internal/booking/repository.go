package booking

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

// exclusionViolation is the SQLSTATE raised by the appointments no-overlap
// EXCLUDE constraint, the schema-level backstop behind the advisory lock.
const exclusionViolation = "23P01"

type bookingDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists appointments in Postgres.
//
// Creation and rescheduling are serialized per professional: the conflict
// check and the write run in one transaction holding an advisory lock keyed
// on the professional id, so two concurrent requests for the same window
// cannot both pass the check.
type Repository struct {
	db bookingDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db bookingDB) *Repository {
	return &Repository{db: db}
}

const appointmentColumns = `id, professional_id, service_id, client_id, client_name, client_phone,
	start_at, end_at, duration_min, status, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ProfessionalID, &a.ServiceID, &a.ClientID, &a.ClientName, &a.ClientPhone,
		&a.StartAt, &a.EndAt, &a.DurationMin, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const overlapQuery = `
	SELECT EXISTS (
		SELECT 1 FROM appointments
		WHERE professional_id = $1
		  AND status NOT IN ('cancelled', 'no_show')
		  AND start_at < $3
		  AND end_at > $2
		  AND ($4::uuid IS NULL OR id <> $4)
	)`

// HasConflict reports whether [start, end) overlaps any blocking appointment
// of the professional, optionally ignoring excludeID.
func (r *Repository) HasConflict(ctx context.Context, professionalID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, overlapQuery, professionalID, start, end, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("booking: conflict check: %w", err)
	}
	return exists, nil
}

// Create inserts the appointment after an in-transaction conflict check.
// Returns a conflict domain error when the interval is taken.
func (r *Repository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	var out *Appointment
	err := r.withProfessionalLock(ctx, a.ProfessionalID, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, overlapQuery, a.ProfessionalID, a.StartAt, a.EndAt, nil).Scan(&exists); err != nil {
			return fmt.Errorf("booking: conflict check: %w", err)
		}
		if exists {
			return Conflictf("this time is already booked")
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO appointments (id, professional_id, service_id, client_id, client_name, client_phone,
				start_at, end_at, duration_min, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+appointmentColumns,
			a.ID, a.ProfessionalID, a.ServiceID, a.ClientID, a.ClientName, a.ClientPhone,
			a.StartAt, a.EndAt, a.DurationMin, a.Status, a.Notes)
		created, err := scanAppointment(row)
		if err != nil {
			return mapWriteError(err, "insert appointment")
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reschedule updates the appointment's interval and client fields after an
// in-transaction conflict check that ignores the appointment itself.
func (r *Repository) Reschedule(ctx context.Context, a *Appointment) (*Appointment, error) {
	var out *Appointment
	err := r.withProfessionalLock(ctx, a.ProfessionalID, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, overlapQuery, a.ProfessionalID, a.StartAt, a.EndAt, a.ID).Scan(&exists); err != nil {
			return fmt.Errorf("booking: conflict check: %w", err)
		}
		if exists {
			return Conflictf("the new time is already booked")
		}
		row := tx.QueryRow(ctx, `
			UPDATE appointments
			SET service_id = $3, client_name = $4, client_phone = $5,
				start_at = $6, end_at = $7, duration_min = $8, notes = $9, updated_at = now()
			WHERE id = $1 AND professional_id = $2
			RETURNING `+appointmentColumns,
			a.ID, a.ProfessionalID, a.ServiceID, a.ClientName, a.ClientPhone,
			a.StartAt, a.EndAt, a.DurationMin, a.Notes)
		updated, err := scanAppointment(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return NotFoundf("appointment not found")
			}
			return mapWriteError(err, "update appointment")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) withProfessionalLock(ctx context.Context, professionalID uuid.UUID, fn func(pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("booking: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Released automatically at commit/rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, professionalID); err != nil {
		return fmt.Errorf("booking: acquire professional lock: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapWriteError(err, "commit")
	}
	return nil
}

// mapWriteError converts the EXCLUDE-constraint violation into the same
// conflict domain error the explicit check produces. Anything else surfaces
// as an internal failure, never as "no conflict".
func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return Conflictf("this time is already booked")
	}
	return fmt.Errorf("booking: %s: %w", op, err)
}

// GetByID fetches an appointment regardless of owner (public cancel path).
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("appointment not found")
		}
		return nil, fmt.Errorf("booking: get by id: %w", err)
	}
	return a, nil
}

// GetForProfessional fetches an appointment only if the professional owns it.
func (r *Repository) GetForProfessional(ctx context.Context, professionalID, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE id = $1 AND professional_id = $2`, id, professionalID)
	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("appointment not found")
		}
		return nil, fmt.Errorf("booking: get for professional: %w", err)
	}
	return a, nil
}

// ListRange returns the professional's appointments starting inside [from, to),
// ordered by start time. Cancelled appointments are included; callers decide
// how to present them.
func (r *Repository) ListRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE professional_id = $1 AND start_at >= $2 AND start_at < $3
		ORDER BY start_at`, professionalID, from, to)
}

// ListBlockingRange returns the non-cancelled, non-no-show appointments
// starting inside [from, to). Slot generation feeds on it.
func (r *Repository) ListBlockingRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE professional_id = $1
		  AND status NOT IN ('cancelled', 'no_show')
		  AND start_at >= $2 AND start_at < $3
		ORDER BY start_at`, professionalID, from, to)
}

// ListCancelled returns the professional's cancelled appointments, newest
// first, optionally filtered by client name or phone.
func (r *Repository) ListCancelled(ctx context.Context, professionalID uuid.UUID, query string) ([]Appointment, error) {
	if query != "" {
		pattern := "%" + query + "%"
		return r.list(ctx, `
			SELECT `+appointmentColumns+` FROM appointments
			WHERE professional_id = $1 AND status = 'cancelled'
			  AND (client_name ILIKE $2 OR client_phone ILIKE $2)
			ORDER BY start_at DESC`, professionalID, pattern)
	}
	return r.list(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE professional_id = $1 AND status = 'cancelled'
		ORDER BY start_at DESC`, professionalID)
}

// ListByPhone returns non-cancelled appointments for a normalized phone
// across professionals, ordered by start time.
func (r *Repository) ListByPhone(ctx context.Context, phone string) ([]Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE client_phone = $1 AND status <> 'cancelled'
		ORDER BY start_at`, phone)
}

// UpdateStatus sets the stored status unconditionally; transition validation
// happens in the workflow.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, status)
	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("appointment not found")
		}
		return nil, fmt.Errorf("booking: update status: %w", err)
	}
	return a, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("booking: list: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.ProfessionalID, &a.ServiceID, &a.ClientID, &a.ClientName, &a.ClientPhone,
			&a.StartAt, &a.EndAt, &a.DurationMin, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("booking: scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
