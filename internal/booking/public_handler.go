package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	svc "github.com/agendafacil/agendafacil/internal/services"
	"github.com/agendafacil/agendafacil/pkg/logging"
)

// CatalogLister lists the services a client may book.
type CatalogLister interface {
	ListActiveForProfessional(ctx context.Context, professionalID uuid.UUID) ([]svc.Service, error)
}

// PublicHandler serves the unauthenticated booking endpoints: clients
// identify themselves by phone number, not by account.
type PublicHandler struct {
	service *Service
	catalog CatalogLister
	logger  *logging.Logger
}

// NewPublicHandler creates the public booking handler.
func NewPublicHandler(service *Service, catalog CatalogLister, logger *logging.Logger) *PublicHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PublicHandler{service: service, catalog: catalog, logger: logger}
}

// ListServices handles GET /public/professionals/{professionalID}/services.
func (h *PublicHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	professionalID, err := uuid.Parse(chi.URLParam(r, "professionalID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid professional id")
		return
	}
	list, err := h.catalog.ListActiveForProfessional(r.Context(), professionalID)
	if err != nil {
		h.logger.Error("failed to list public services", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": list, "count": len(list)})
}

// slotView renders a slot the way the booking page consumes it.
type slotView struct {
	Time     string `json:"time"`     // "09:45"
	Datetime string `json:"datetime"` // RFC3339
}

// ListSlots handles GET /public/slots?professional_id=&service_id=&date=.
func (h *PublicHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	professionalID, err := uuid.Parse(q.Get("professional_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid professional id")
		return
	}
	serviceID, err := uuid.Parse(q.Get("service_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), professionalID, serviceID, date)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, slotView{
			Time:     s.Start.Format("15:04"),
			Datetime: s.Start.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"available_slots": views,
		"date":            q.Get("date"),
	})
}

// ListByPhone handles GET /public/appointments/{phone}.
func (h *PublicHandler) ListByPhone(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.service.ListByPhone(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Appointments: appointments, Count: len(appointments)})
}

type publicBookingRequest struct {
	ServiceID   string `json:"service_id"`
	Date        string `json:"date"` // "2026-01-31"
	Time        string `json:"time"` // "10:30"
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	Notes       string `json:"notes"`
}

// Create handles POST /public/appointments.
func (h *PublicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req publicBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	startAt, err := time.ParseInLocation("2006-01-02 15:04", fmt.Sprintf("%s %s", req.Date, req.Time), time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date or time")
		return
	}

	appointment, err := h.service.CreatePublic(r.Context(), CreateInput{
		ServiceID:   serviceID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		StartAt:     startAt,
		Notes:       req.Notes,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, appointment)
}

// Cancel handles DELETE /public/appointments/{appointmentID}. The client
// proves ownership with the phone used at booking time.
func (h *PublicHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	var req struct {
		ClientPhone string `json:"client_phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	appointment, err := h.service.CancelByClient(r.Context(), id, req.ClientPhone)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}
