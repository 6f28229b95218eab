// Package clients keeps lightweight, phone-identified client records.
// Clients do not hold accounts; a booking carries the client's name and
// normalized phone, and a record is created on first contact.
package clients

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

// ErrInvalidPhone is returned when a phone has fewer than 10 digits after
// normalization.
var ErrInvalidPhone = errors.New("clients: phone must have at least 10 digits")

// Client is a person who books appointments, identified by phone number.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizePhone strips every non-digit character so that formatted and raw
// phone inputs compare equal.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type clientsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists client records in Postgres.
type Repository struct {
	db clientsDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("clients: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db clientsDB) *Repository {
	return &Repository{db: db}
}

// FindOrCreate looks a client up by normalized phone, creating a record when
// none exists. The stored phone is always digits-only.
func (r *Repository) FindOrCreate(ctx context.Context, name, phone string) (*Client, error) {
	normalized := NormalizePhone(phone)
	if len(normalized) < 10 {
		return nil, ErrInvalidPhone
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO clients (id, name, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		RETURNING id, name, phone, created_at`,
		uuid.New(), strings.TrimSpace(name), normalized)

	var c Client
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("clients: find or create: %w", err)
	}
	return &c, nil
}

// ListForProfessional returns the clients who have at least one appointment
// with the professional, most recent first.
func (r *Repository) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]Client, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT c.id, c.name, c.phone, c.created_at
		FROM clients c
		JOIN appointments a ON a.client_id = c.id
		WHERE a.professional_id = $1
		ORDER BY c.created_at DESC`,
		professionalID)
	if err != nil {
		return nil, fmt.Errorf("clients: list for professional: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("clients: scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
