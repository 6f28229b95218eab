package booking

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agendafacil/agendafacil/internal/http/middleware"
	"github.com/agendafacil/agendafacil/pkg/logging"
)

// Handler serves the professional-facing appointment endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the professional appointment handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type appointmentRequest struct {
	ServiceID   string `json:"service_id"`
	StartAt     string `json:"start_at"` // RFC3339
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	Notes       string `json:"notes"`
}

// Create handles POST /api/appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing professional identity")
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.toCreateInput(professionalID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	appointment, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, appointment)
}

// Update handles PUT /api/appointments/{appointmentID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing professional identity")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ci, err := req.toCreateInput(professionalID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	appointment, err := h.service.Reschedule(r.Context(), UpdateInput{
		ID:             id,
		ProfessionalID: ci.ProfessionalID,
		ServiceID:      ci.ServiceID,
		ClientName:     ci.ClientName,
		ClientPhone:    ci.ClientPhone,
		StartAt:        ci.StartAt,
		Notes:          ci.Notes,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

// Cancel handles POST /api/appointments/{appointmentID}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing professional identity")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	appointment, err := h.service.CancelByProfessional(r.Context(), professionalID, id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

// Transition handles POST /api/appointments/{appointmentID}/status.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing professional identity")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	appointment, err := h.service.Transition(r.Context(), professionalID, id, Status(req.Status))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

// Calendar handles GET /api/appointments?start=&end=.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing professional identity")
		return
	}
	from, err := parseTimeParam(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start and end dates are required")
		return
	}
	to, err := parseTimeParam(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start and end dates are required")
		return
	}
	appointments, err := h.service.ListCalendar(r.Context(), professionalID, from, to)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Appointments: appointments, Count: len(appointments)})
}

// Today handles GET /api/appointments/today.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing professional identity")
		return
	}
	appointments, err := h.service.ListToday(r.Context(), professionalID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Appointments: appointments, Count: len(appointments)})
}

// Cancelled handles GET /api/appointments/cancelled?q=.
func (h *Handler) Cancelled(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing professional identity")
		return
	}
	appointments, err := h.service.ListCancelled(r.Context(), professionalID, r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Appointments: appointments, Count: len(appointments)})
}

// Get handles GET /api/appointments/{appointmentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing professional identity")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	appointment, err := h.service.GetAppointment(r.Context(), professionalID, id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

type listResponse struct {
	Appointments []Appointment `json:"appointments"`
	Count        int           `json:"count"`
}

func (req *appointmentRequest) toCreateInput(professionalID uuid.UUID) (CreateInput, error) {
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return CreateInput{}, Validationf("invalid service id")
	}
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return CreateInput{}, Validationf("invalid start time, expected RFC3339")
	}
	return CreateInput{
		ProfessionalID: professionalID,
		ServiceID:      serviceID,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		StartAt:        startAt,
		Notes:          req.Notes,
	}, nil
}

// parseTimeParam accepts RFC3339 or a bare date.
func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
