package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/agendafacil/agendafacil/internal/http/middleware"
	"github.com/agendafacil/agendafacil/pkg/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the working-hours endpoints for the authenticated
// professional.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates the working-hours handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type windowRequest struct {
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
}

// Upsert handles PUT /api/working-hours/{weekday}.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	pid, ok := professionalID(r)
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}
	weekday, err := strconv.Atoi(chi.URLParam(r, "weekday"))
	if err != nil {
		http.Error(w, `{"error": "weekday must be an integer between 0 and 6"}`, http.StatusBadRequest)
		return
	}

	var req windowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	window := &WorkingHours{
		ProfessionalID: pid,
		Weekday:        time.Weekday(weekday),
		OpensAt:        req.OpensAt,
		ClosesAt:       req.ClosesAt,
	}
	if err := window.Validate(); err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	saved, err := h.repo.Upsert(r.Context(), window)
	if err != nil {
		h.logger.Error("failed to save working hours", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(saved)
}

// List handles GET /api/working-hours.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pid, ok := professionalID(r)
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	windows, err := h.repo.List(r.Context(), pid)
	if err != nil {
		h.logger.Error("failed to list working hours", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if windows == nil {
		windows = []WorkingHours{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"working_hours": windows})
}

// Delete handles DELETE /api/working-hours/{weekday}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	pid, ok := professionalID(r)
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}
	weekday, err := strconv.Atoi(chi.URLParam(r, "weekday"))
	if err != nil || weekday < 0 || weekday > 6 {
		http.Error(w, `{"error": "weekday must be an integer between 0 and 6"}`, http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), pid, time.Weekday(weekday)); err != nil {
		if errors.Is(err, ErrNoWindow) {
			http.Error(w, `{"error": "no working hours configured for that weekday"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete working hours", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func professionalID(r *http.Request) (uuid.UUID, bool) {
	return middleware.ProfessionalIDFromContext(r.Context())
}
