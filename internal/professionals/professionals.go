// Package professionals manages professional accounts and their credentials.
package professionals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound means no professional matches the lookup.
	ErrNotFound = errors.New("professionals: not found")
	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("professionals: email already registered")
)

// Professional is an account that owns services, working hours and bookings.
// PasswordHash never leaves the package boundary in responses.
type Professional struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type professionalsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists professional accounts in Postgres.
type Repository struct {
	db professionalsDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("professionals: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db professionalsDB) *Repository {
	return &Repository{db: db}
}

// Create registers a new professional account.
func (r *Repository) Create(ctx context.Context, p *Professional) (*Professional, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO professionals (id, name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, password_hash, phone, created_at`,
		p.ID, strings.TrimSpace(p.Name), normalizeEmail(p.Email), p.PasswordHash, p.Phone)

	out, err := scan(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("professionals: create: %w", err)
	}
	return out, nil
}

// GetByEmail fetches an account by normalized email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Professional, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, phone, created_at
		FROM professionals WHERE email = $1`, normalizeEmail(email))
	return r.scanOne(row)
}

// GetByID fetches an account by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Professional, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, phone, created_at
		FROM professionals WHERE id = $1`, id)
	return r.scanOne(row)
}

func (r *Repository) scanOne(row pgx.Row) (*Professional, error) {
	out, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("professionals: get: %w", err)
	}
	return out, nil
}

func scan(row pgx.Row) (*Professional, error) {
	var p Professional
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.Phone, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
