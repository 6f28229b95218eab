package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendafacil/agendafacil/internal/auth"
	"github.com/agendafacil/agendafacil/internal/services"
	"github.com/agendafacil/agendafacil/pkg/logging"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newRouter(t *testing.T, db Pinger) http.Handler {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	reg := prometheus.NewRegistry()
	return New(&Config{
		Logger:          logging.Default(),
		ServicesHandler: services.NewHandler(services.NewRepositoryWithDB(mock), logging.Default()),
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		DB:              db,
		JWTSecret:       "test-secret",
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newRouter(t, fakePinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthEndpoint_DegradedWhenStoreUnreachable(t *testing.T) {
	router := newRouter(t, fakePinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newRouter(t, fakePinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRoutesRequireToken(t *testing.T) {
	router := newRouter(t, fakePinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/services", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIRoutesAcceptValidToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	professionalID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM services").
		WithArgs(professionalID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "professional_id", "name", "duration_min", "price_cents", "active", "created_at"}))

	router := New(&Config{
		Logger:          logging.Default(),
		ServicesHandler: services.NewHandler(services.NewRepositoryWithDB(mock), logging.Default()),
		JWTSecret:       "test-secret",
	})

	token, err := auth.MakeToken(professionalID.String(), "test-secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
