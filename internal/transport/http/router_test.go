package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRegistrar struct{}

func (pingRegistrar) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

type staticHealth struct{ err error }

func (h staticHealth) Health(context.Context) error { return h.err }

func newTestRouter(t *testing.T, health ...HealthChecker) http.Handler {
	t.Helper()
	return NewRouter(Config{
		SigningKey: "test-signing-key",
		Logger:     slog.New(slog.DiscardHandler),
		Health:     health,
	}, pingRegistrar{})
}

func bearerToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter(t *testing.T) {
	t.Run("healthz is open and reports ok", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTestRouter(t, staticHealth{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("healthz reflects backend failure", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTestRouter(t, staticHealth{err: errors.New("down")}).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("metrics is open", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("feature routes require a bearer token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("feature routes accept a valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", bearerToken(t))
		rr := httptest.NewRecorder()
		newTestRouter(t).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
