package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agendafacil/agendafacil/internal/clients"
	"github.com/agendafacil/agendafacil/internal/observability/metrics"
	"github.com/agendafacil/agendafacil/internal/schedule"
	svc "github.com/agendafacil/agendafacil/internal/services"
	"github.com/agendafacil/agendafacil/pkg/logging"
)

var bookingTracer = otel.Tracer("agendafacil.internal.booking")

// AppointmentStore is the persistence surface needed by the workflow.
// *Repository implements it against Postgres.
type AppointmentStore interface {
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	Reschedule(ctx context.Context, a *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetForProfessional(ctx context.Context, professionalID, id uuid.UUID) (*Appointment, error)
	ListRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Appointment, error)
	ListBlockingRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Appointment, error)
	ListCancelled(ctx context.Context, professionalID uuid.UUID, query string) ([]Appointment, error)
	ListByPhone(ctx context.Context, phone string) ([]Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error)
}

// ServiceCatalog resolves bookable services.
type ServiceCatalog interface {
	GetForProfessional(ctx context.Context, professionalID, serviceID uuid.UUID) (*svc.Service, error)
	GetActive(ctx context.Context, serviceID uuid.UUID) (*svc.Service, error)
}

// WindowResolver maps a date to the professional's working-hours window.
type WindowResolver interface {
	ResolveWindow(ctx context.Context, professionalID uuid.UUID, date time.Time) (*schedule.WorkingHours, error)
}

// ClientDirectory upserts phone-identified client records.
type ClientDirectory interface {
	FindOrCreate(ctx context.Context, name, phone string) (*clients.Client, error)
}

// Service orchestrates slot computation, conflict checking and the
// appointment lifecycle.
type Service struct {
	store   AppointmentStore
	catalog ServiceCatalog
	windows WindowResolver
	clients ClientDirectory
	cache   *SlotCache
	metrics *metrics.BookingMetrics
	logger  *logging.Logger

	step         time.Duration
	cancelNotice time.Duration
	now          func() time.Time
}

// Options tunes the workflow's policies.
type Options struct {
	// SlotStep is the fixed distance between candidate start times.
	SlotStep time.Duration
	// CancelNotice is the minimum notice for client-initiated cancellation.
	CancelNotice time.Duration
}

// NewService constructs the booking workflow. Cache and metrics may be nil.
func NewService(store AppointmentStore, catalog ServiceCatalog, windows WindowResolver, directory ClientDirectory,
	cache *SlotCache, m *metrics.BookingMetrics, logger *logging.Logger, opts Options) *Service {
	if store == nil {
		panic("booking: appointment store required")
	}
	if catalog == nil {
		panic("booking: service catalog required")
	}
	if windows == nil {
		panic("booking: window resolver required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if opts.SlotStep <= 0 {
		opts.SlotStep = 45 * time.Minute
	}
	if opts.CancelNotice <= 0 {
		opts.CancelNotice = 2 * time.Hour
	}
	return &Service{
		store:        store,
		catalog:      catalog,
		windows:      windows,
		clients:      directory,
		cache:        cache,
		metrics:      m,
		logger:       logger,
		step:         opts.SlotStep,
		cancelNotice: opts.CancelNotice,
		now:          time.Now,
	}
}

// CreateInput carries the already-parsed fields of a booking request.
type CreateInput struct {
	ProfessionalID uuid.UUID
	ServiceID      uuid.UUID
	ClientName     string
	ClientPhone    string
	StartAt        time.Time
	Notes          string
}

func (in *CreateInput) validate() error {
	if in.ServiceID == uuid.Nil {
		return Validationf("service is required")
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return Validationf("client name is required")
	}
	if len(clients.NormalizePhone(in.ClientPhone)) < 10 {
		return Validationf("client phone must have at least 10 digits")
	}
	if in.StartAt.IsZero() {
		return Validationf("start time is required")
	}
	return nil
}

// Create books an appointment on behalf of the professional. Unknown client
// phones get a lightweight client record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(attribute.String("agendafacil.professional_id", in.ProfessionalID.String()))

	if in.ProfessionalID == uuid.Nil {
		return nil, Validationf("professional is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	service, err := s.catalog.GetForProfessional(ctx, in.ProfessionalID, in.ServiceID)
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			return nil, NotFoundf("service not found")
		}
		return nil, fmt.Errorf("resolve service: %w", err)
	}

	appointment := s.buildAppointment(in, service)
	if s.clients != nil {
		client, err := s.clients.FindOrCreate(ctx, in.ClientName, in.ClientPhone)
		if err != nil {
			if errors.Is(err, clients.ErrInvalidPhone) {
				return nil, Validationf("client phone must have at least 10 digits")
			}
			return nil, fmt.Errorf("upsert client: %w", err)
		}
		appointment.ClientID = &client.ID
	}

	return s.persistCreate(ctx, appointment, "professional")
}

// CreatePublic books an appointment from the public flow. The professional is
// derived from the service, no client record is created, and past start times
// are rejected.
func (s *Service) CreatePublic(ctx context.Context, in CreateInput) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.create_public")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.StartAt.Before(s.now()) {
		return nil, Validationf("cannot book a time in the past")
	}

	service, err := s.catalog.GetActive(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			return nil, NotFoundf("service not found or unavailable")
		}
		return nil, fmt.Errorf("resolve service: %w", err)
	}
	in.ProfessionalID = service.ProfessionalID

	return s.persistCreate(ctx, s.buildAppointment(in, service), "public")
}

func (s *Service) buildAppointment(in CreateInput, service *svc.Service) *Appointment {
	duration := time.Duration(service.DurationMin) * time.Minute
	return &Appointment{
		ID:             uuid.New(),
		ProfessionalID: in.ProfessionalID,
		ServiceID:      service.ID,
		ClientName:     strings.TrimSpace(in.ClientName),
		ClientPhone:    clients.NormalizePhone(in.ClientPhone),
		StartAt:        in.StartAt,
		EndAt:          in.StartAt.Add(duration),
		DurationMin:    service.DurationMin,
		Status:         StatusScheduled,
		Notes:          strings.TrimSpace(in.Notes),
	}
}

func (s *Service) persistCreate(ctx context.Context, appointment *Appointment, origin string) (*Appointment, error) {
	created, err := s.store.Create(ctx, appointment)
	if err != nil {
		if KindOf(err) == KindConflict {
			s.metrics.ObserveConflict("create")
			s.logger.Warn("booking rejected: time conflict",
				"professional_id", appointment.ProfessionalID, "start_at", appointment.StartAt)
		}
		return nil, err
	}
	s.metrics.ObserveCreated(origin)
	s.invalidateSlots(ctx, created.ProfessionalID)
	s.logger.Info("appointment created",
		"appointment_id", created.ID,
		"professional_id", created.ProfessionalID,
		"origin", origin,
		"start_at", created.StartAt,
	)
	return created, nil
}

// UpdateInput carries a reschedule/edit request.
type UpdateInput struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	ServiceID      uuid.UUID
	ClientName     string
	ClientPhone    string
	StartAt        time.Time
	Notes          string
}

// Reschedule recomputes the appointment's interval and re-validates it
// against every other booking of the professional.
func (s *Service) Reschedule(ctx context.Context, in UpdateInput) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.reschedule")
	defer span.End()
	span.SetAttributes(attribute.String("agendafacil.appointment_id", in.ID.String()))

	ci := CreateInput{
		ProfessionalID: in.ProfessionalID,
		ServiceID:      in.ServiceID,
		ClientName:     in.ClientName,
		ClientPhone:    in.ClientPhone,
		StartAt:        in.StartAt,
		Notes:          in.Notes,
	}
	if err := ci.validate(); err != nil {
		return nil, err
	}

	service, err := s.catalog.GetForProfessional(ctx, in.ProfessionalID, in.ServiceID)
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			return nil, NotFoundf("service not found")
		}
		return nil, fmt.Errorf("resolve service: %w", err)
	}

	appointment := s.buildAppointment(ci, service)
	appointment.ID = in.ID

	updated, err := s.store.Reschedule(ctx, appointment)
	if err != nil {
		if KindOf(err) == KindConflict {
			s.metrics.ObserveConflict("reschedule")
		}
		return nil, err
	}
	s.invalidateSlots(ctx, updated.ProfessionalID)
	s.logger.Info("appointment rescheduled", "appointment_id", updated.ID, "start_at", updated.StartAt)
	return updated, nil
}

// CancelByProfessional cancels regardless of how close the start is.
// Cancelling twice is a policy error, not a silent success.
func (s *Service) CancelByProfessional(ctx context.Context, professionalID, id uuid.UUID) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel_professional")
	defer span.End()

	appointment, err := s.store.GetForProfessional(ctx, professionalID, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == StatusCancelled {
		return nil, Policyf("appointment is already cancelled")
	}
	cancelled, err := s.store.UpdateStatus(ctx, id, StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCancelled("professional")
	s.invalidateSlots(ctx, cancelled.ProfessionalID)
	s.logger.Info("appointment cancelled by professional", "appointment_id", id)
	return cancelled, nil
}

// CancelByClient cancels when the supplied phone matches the booking and the
// start is more than the notice period away.
func (s *Service) CancelByClient(ctx context.Context, id uuid.UUID, phone string) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel_client")
	defer span.End()

	if strings.TrimSpace(phone) == "" {
		return nil, Validationf("phone is required to cancel")
	}
	appointment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if clients.NormalizePhone(phone) != clients.NormalizePhone(appointment.ClientPhone) {
		return nil, Authorizationf("phone does not match this appointment")
	}
	if appointment.Status == StatusCancelled {
		return nil, Policyf("appointment is already cancelled")
	}
	if !appointment.StartAt.After(s.now().Add(s.cancelNotice)) {
		hours := int(s.cancelNotice / time.Hour)
		return nil, Policyf("appointments can only be cancelled more than %d hours in advance", hours)
	}
	cancelled, err := s.store.UpdateStatus(ctx, id, StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCancelled("client")
	s.invalidateSlots(ctx, cancelled.ProfessionalID)
	s.logger.Info("appointment cancelled by client", "appointment_id", id)
	return cancelled, nil
}

// Transition applies an explicit status change, validated against the
// appointment state machine.
func (s *Service) Transition(ctx context.Context, professionalID, id uuid.UUID, next Status) (*Appointment, error) {
	if !next.Valid() {
		return nil, Validationf("unknown status %q", next)
	}
	appointment, err := s.store.GetForProfessional(ctx, professionalID, id)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.CanTransitionTo(next) {
		return nil, Policyf("cannot change status from %s to %s", appointment.Status, next)
	}
	return s.store.UpdateStatus(ctx, id, next)
}

// AvailableSlots computes the bookable start times for a service on a date.
// A day without a working-hours window yields an empty listing.
func (s *Service) AvailableSlots(ctx context.Context, professionalID, serviceID uuid.UUID, date time.Time) ([]Slot, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.available_slots")
	defer span.End()

	service, err := s.catalog.GetActive(ctx, serviceID)
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			return nil, NotFoundf("service not found or unavailable")
		}
		return nil, fmt.Errorf("resolve service: %w", err)
	}
	if service.ProfessionalID != professionalID {
		return nil, NotFoundf("service not found for this professional")
	}

	window, err := s.windows.ResolveWindow(ctx, professionalID, date)
	if err != nil {
		if errors.Is(err, schedule.ErrNoWindow) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve window: %w", err)
	}

	dateKey := date.Format("2006-01-02")
	if cached, ok := s.cache.Get(ctx, professionalID, serviceID, dateKey); ok {
		return cached, nil
	}

	open, close, err := window.Bounds(date)
	if err != nil {
		return nil, fmt.Errorf("window bounds: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	existing, err := s.store.ListBlockingRange(ctx, professionalID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	started := time.Now()
	duration := time.Duration(service.DurationMin) * time.Minute
	slots := GenerateSlots(open, close, duration, s.step, existing, s.now())
	s.metrics.ObserveSlotGeneration(time.Since(started).Seconds())

	s.cache.Set(ctx, professionalID, serviceID, dateKey, slots)
	return slots, nil
}

// ListCalendar returns the professional's appointments in [from, to) with
// reconciled statuses.
func (s *Service) ListCalendar(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	appointments, err := s.store.ListRange(ctx, professionalID, from, to)
	if err != nil {
		return nil, err
	}
	s.deriveAll(appointments)
	return appointments, nil
}

// ListToday returns today's appointments with reconciled statuses.
func (s *Service) ListToday(ctx context.Context, professionalID uuid.UUID) ([]Appointment, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.ListCalendar(ctx, professionalID, dayStart, dayStart.AddDate(0, 0, 1))
}

// ListCancelled returns cancelled appointments, optionally filtered by
// client name or phone.
func (s *Service) ListCancelled(ctx context.Context, professionalID uuid.UUID, query string) ([]Appointment, error) {
	return s.store.ListCancelled(ctx, professionalID, query)
}

// GetAppointment fetches one appointment scoped to the professional, with a
// reconciled status.
func (s *Service) GetAppointment(ctx context.Context, professionalID, id uuid.UUID) (*Appointment, error) {
	appointment, err := s.store.GetForProfessional(ctx, professionalID, id)
	if err != nil {
		return nil, err
	}
	appointment.Status = DeriveStatus(appointment, s.now())
	return appointment, nil
}

// ListByPhone returns a client's non-cancelled appointments across
// professionals, identified by phone number.
func (s *Service) ListByPhone(ctx context.Context, rawPhone string) ([]Appointment, error) {
	phone := clients.NormalizePhone(rawPhone)
	if len(phone) < 10 {
		return nil, Validationf("phone must have at least 10 digits")
	}
	appointments, err := s.store.ListByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	s.deriveAll(appointments)
	return appointments, nil
}

func (s *Service) deriveAll(appointments []Appointment) {
	now := s.now()
	for i := range appointments {
		appointments[i].Status = DeriveStatus(&appointments[i], now)
	}
}

func (s *Service) invalidateSlots(ctx context.Context, professionalID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, professionalID); err != nil {
		s.logger.Warn("slot cache invalidation failed", "professional_id", professionalID, "error", err)
	}
}
