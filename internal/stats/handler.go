package stats

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/agendafacil/agendafacil/internal/http/middleware"
	"github.com/agendafacil/agendafacil/pkg/logging"
)

// Handler exposes the dashboard stats endpoint.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates the stats handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger, now: time.Now}
}

// Summary handles GET /api/stats?period=day|week|month.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	pid, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	period := Period(r.URL.Query().Get("period"))
	if period == "" {
		period = PeriodDay
	}
	if !period.Valid() {
		http.Error(w, `{"error": "period must be day, week or month"}`, http.StatusBadRequest)
		return
	}

	summary, err := h.repo.Summarize(r.Context(), pid, period, h.now())
	if err != nil {
		h.logger.Error("failed to compute stats", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
