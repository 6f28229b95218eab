package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type servicesDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists the service catalog in Postgres.
type Repository struct {
	db servicesDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("services: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db servicesDB) *Repository {
	return &Repository{db: db}
}

const serviceColumns = "id, professional_id, name, duration_min, price_cents, active, created_at"

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.ProfessionalID, &s.Name, &s.DurationMin, &s.PriceCents, &s.Active, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new service for the professional.
func (r *Repository) Create(ctx context.Context, s *Service) (*Service, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO services (id, professional_id, name, duration_min, price_cents, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+serviceColumns,
		s.ID, s.ProfessionalID, strings.TrimSpace(s.Name), s.DurationMin, s.PriceCents, s.Active)

	out, err := scanService(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("services: create: %w", err)
	}
	return out, nil
}

// GetForProfessional returns the service only if it belongs to the professional.
func (r *Repository) GetForProfessional(ctx context.Context, professionalID, serviceID uuid.UUID) (*Service, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+serviceColumns+` FROM services
		WHERE id = $1 AND professional_id = $2`,
		serviceID, professionalID)
	out, err := scanService(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("services: get: %w", err)
	}
	return out, nil
}

// GetActive returns the service regardless of owner, provided it is active.
// The public booking flow uses it to resolve duration and professional.
func (r *Repository) GetActive(ctx context.Context, serviceID uuid.UUID) (*Service, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+serviceColumns+` FROM services
		WHERE id = $1 AND active`,
		serviceID)
	out, err := scanService(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("services: get active: %w", err)
	}
	return out, nil
}

// ListForProfessional returns all of the professional's services by name.
func (r *Repository) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]Service, error) {
	return r.list(ctx, `
		SELECT `+serviceColumns+` FROM services
		WHERE professional_id = $1
		ORDER BY name`, professionalID)
}

// ListActiveForProfessional returns the services a client may book.
func (r *Repository) ListActiveForProfessional(ctx context.Context, professionalID uuid.UUID) ([]Service, error) {
	return r.list(ctx, `
		SELECT `+serviceColumns+` FROM services
		WHERE professional_id = $1 AND active
		ORDER BY name`, professionalID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Service, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("services: list: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.ProfessionalID, &s.Name, &s.DurationMin, &s.PriceCents, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("services: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the professional's service. Appointments referencing it are
// removed by the store's cascading delete.
func (r *Repository) Delete(ctx context.Context, professionalID, serviceID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM services WHERE id = $1 AND professional_id = $2`,
		serviceID, professionalID)
	if err != nil {
		return fmt.Errorf("services: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
