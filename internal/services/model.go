// Package services manages the catalog of bookable services per professional.
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the service does not exist or belongs to someone else.
	ErrNotFound = errors.New("services: service not found")
	// ErrDuplicateName means the professional already offers a service with
	// that name.
	ErrDuplicateName = errors.New("services: duplicate service name")
)

// Service is a bookable offering. Duration is denormalized onto appointments
// at booking time, so editing a service never rewrites existing bookings.
type Service struct {
	ID             uuid.UUID `json:"id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	Name           string    `json:"name"`
	DurationMin    int       `json:"duration_min"`
	PriceCents     int64     `json:"price_cents"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks the catalog invariants for a new or updated service.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("service name is required")
	}
	if s.DurationMin <= 0 {
		return errors.New("duration must be a positive number of minutes")
	}
	if s.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}
