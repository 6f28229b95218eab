package clients

import (
	"encoding/json"
	"net/http"

	"github.com/agendafacil/agendafacil/internal/http/middleware"
	"github.com/agendafacil/agendafacil/pkg/logging"
)

// Handler exposes the client registry for the authenticated professional.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates the client-registry handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/clients. It returns every client that has at least
// one appointment with the professional.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pid, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	list, err := h.repo.ListForProfessional(r.Context(), pid)
	if err != nil {
		h.logger.Error("failed to list clients", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Client{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"clients": list, "count": len(list)})
}
