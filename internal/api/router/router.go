// Package router wires every HTTP surface of the API: the public booking
// endpoints, the authenticated professional endpoints and the ops endpoints.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agendafacil/agendafacil/internal/booking"
	"github.com/agendafacil/agendafacil/internal/clients"
	httpmiddleware "github.com/agendafacil/agendafacil/internal/http/middleware"
	"github.com/agendafacil/agendafacil/internal/professionals"
	"github.com/agendafacil/agendafacil/internal/schedule"
	"github.com/agendafacil/agendafacil/internal/services"
	"github.com/agendafacil/agendafacil/internal/stats"
	"github.com/agendafacil/agendafacil/pkg/logging"
)

// Pinger reports whether the backing store is reachable. *pgxpool.Pool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	AuthHandler     *professionals.Handler
	ServicesHandler *services.Handler
	ScheduleHandler *schedule.Handler
	BookingHandler  *booking.Handler
	PublicHandler   *booking.PublicHandler
	ClientsHandler  *clients.Handler
	StatsHandler    *stats.Handler

	MetricsHandler http.Handler
	DB             Pinger

	JWTSecret          string
	CORSAllowedOrigins []string
	PublicRateLimit    float64
	PublicRateBurst    int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Ops endpoints
	r.Get("/health", healthCheck(cfg.DB))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Account endpoints
	if cfg.AuthHandler != nil {
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)
	}

	// Public booking surface, rate limited per client IP
	if cfg.PublicHandler != nil {
		r.Route("/public", func(public chi.Router) {
			if cfg.PublicRateLimit > 0 {
				public.Use(httpmiddleware.RateLimit(cfg.PublicRateLimit, cfg.PublicRateBurst))
			}
			public.Get("/professionals/{professionalID}/services", cfg.PublicHandler.ListServices)
			public.Get("/slots", cfg.PublicHandler.ListSlots)
			public.Get("/appointments/{phone}", cfg.PublicHandler.ListByPhone)
			public.Post("/appointments", cfg.PublicHandler.Create)
			public.Delete("/appointments/{appointmentID}", cfg.PublicHandler.Cancel)
		})
	}

	// Professional endpoints, JWT protected
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.ProfessionalJWT(cfg.JWTSecret))

		if cfg.AuthHandler != nil {
			api.Get("/me", cfg.AuthHandler.Me)
		}
		if cfg.ServicesHandler != nil {
			api.Route("/services", func(r chi.Router) {
				r.Post("/", cfg.ServicesHandler.Create)
				r.Get("/", cfg.ServicesHandler.List)
				r.Get("/{id}", cfg.ServicesHandler.Get)
				r.Delete("/{id}", cfg.ServicesHandler.Delete)
			})
		}
		if cfg.ScheduleHandler != nil {
			api.Route("/working-hours", func(r chi.Router) {
				r.Get("/", cfg.ScheduleHandler.List)
				r.Put("/{weekday}", cfg.ScheduleHandler.Upsert)
				r.Delete("/{weekday}", cfg.ScheduleHandler.Delete)
			})
		}
		if cfg.BookingHandler != nil {
			api.Route("/appointments", func(r chi.Router) {
				r.Post("/", cfg.BookingHandler.Create)
				r.Get("/", cfg.BookingHandler.Calendar)
				r.Get("/today", cfg.BookingHandler.Today)
				r.Get("/cancelled", cfg.BookingHandler.Cancelled)
				r.Get("/{appointmentID}", cfg.BookingHandler.Get)
				r.Put("/{appointmentID}", cfg.BookingHandler.Update)
				r.Post("/{appointmentID}/cancel", cfg.BookingHandler.Cancel)
				r.Post("/{appointmentID}/status", cfg.BookingHandler.Transition)
			})
		}
		if cfg.ClientsHandler != nil {
			api.Get("/clients", cfg.ClientsHandler.List)
		}
		if cfg.StatsHandler != nil {
			api.Get("/stats", cfg.StatsHandler.Summary)
		}
	})

	return r
}

func healthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
