package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/agendafacil/agendafacil/internal/auth"
)

type contextKey string

const professionalIDKey contextKey = "professionalID"

// ProfessionalJWT enforces a bearer token on professional-scoped routes and
// places the authenticated professional id in the request context.
func ProfessionalJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, `{"error":"authentication disabled"}`, http.StatusUnauthorized)
				return
			}
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			professionalID, err := uuid.Parse(claims.ProfessionalID)
			if err != nil {
				http.Error(w, `{"error":"invalid token subject"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), professionalIDKey, professionalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfessionalIDFromContext returns the authenticated professional id, if any.
func ProfessionalIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(professionalIDKey).(uuid.UUID)
	return id, ok
}

// WithProfessionalID injects a professional id into ctx. Handler tests use it
// to simulate an authenticated request.
func WithProfessionalID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, professionalIDKey, id)
}
