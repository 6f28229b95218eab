package services

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agendafacil/agendafacil/internal/http/middleware"
	"github.com/agendafacil/agendafacil/pkg/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the service-catalog endpoints for the authenticated
// professional.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates the catalog handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type serviceRequest struct {
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	PriceCents  int64  `json:"price_cents"`
	Active      *bool  `json:"active"`
}

// Create handles POST /api/services.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	pid, ok := professionalID(r)
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	svc := &Service{
		ProfessionalID: pid,
		Name:           req.Name,
		DurationMin:    req.DurationMin,
		PriceCents:     req.PriceCents,
		Active:         active,
	}
	if err := svc.Validate(); err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(r.Context(), svc)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			http.Error(w, `{"error": "a service with that name already exists"}`, http.StatusConflict)
			return
		}
		h.logger.Error("failed to create service", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// List handles GET /api/services.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pid, ok := professionalID(r)
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	list, err := h.repo.ListForProfessional(r.Context(), pid)
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Service{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"services": list, "count": len(list)})
}

// Get handles GET /api/services/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	pid, ok := professionalID(r)
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error": "invalid service id"}`, http.StatusBadRequest)
		return
	}

	svc, err := h.repo.GetForProfessional(r.Context(), pid, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "service not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load service", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(svc)
}

// Delete handles DELETE /api/services/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	pid, ok := professionalID(r)
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error": "invalid service id"}`, http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), pid, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "service not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete service", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func professionalID(r *http.Request) (uuid.UUID, bool) {
	return middleware.ProfessionalIDFromContext(r.Context())
}
