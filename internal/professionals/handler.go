package professionals

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/agendafacil/agendafacil/internal/auth"
	"github.com/agendafacil/agendafacil/internal/http/middleware"
	"github.com/agendafacil/agendafacil/pkg/logging"
)

// Handler exposes account registration, login and profile endpoints.
type Handler struct {
	repo        *Repository
	tokenSecret string
	tokenExpiry time.Duration
	logger      *logging.Logger
}

// NewHandler creates the auth handler.
func NewHandler(repo *Repository, tokenSecret string, tokenExpiry time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, tokenSecret: tokenSecret, tokenExpiry: tokenExpiry, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token        string        `json:"token"`
	Professional *Professional `json:"professional"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.Email) == "" {
		http.Error(w, `{"error": "name and email are required"}`, http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		http.Error(w, `{"error": "password must have at least 6 characters"}`, http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	created, err := h.repo.Create(r.Context(), &Professional{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
	})
	if err != nil {
		if err == ErrEmailTaken {
			http.Error(w, `{"error": "email already registered"}`, http.StatusConflict)
			return
		}
		h.logger.Error("failed to create professional", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.issueToken(w, created, http.StatusCreated)
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if err == ErrNotFound {
			http.Error(w, `{"error": "invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		h.logger.Error("failed to load professional", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if !auth.CheckPassword(p.PasswordHash, req.Password) {
		http.Error(w, `{"error": "invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	h.issueToken(w, p, http.StatusOK)
}

// Me handles GET /api/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	pid, ok := middleware.ProfessionalIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	p, err := h.repo.GetByID(r.Context(), pid)
	if err != nil {
		if err == ErrNotFound {
			http.Error(w, `{"error": "professional not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load professional", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *Handler) issueToken(w http.ResponseWriter, p *Professional, status int) {
	token, err := auth.MakeToken(p.ID.String(), h.tokenSecret, h.tokenExpiry)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(authResponse{Token: token, Professional: p})
}
