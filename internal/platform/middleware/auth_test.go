package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "verdict/pkg/domain"
	"verdict/pkg/requestcontext"
)

const testSigningKey = "test-signing-key"

func signToken(t *testing.T, key string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func callerClaims(subject string, role string) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	jurorID := uuid.New()

	var gotCaller id.JurorID
	var gotOwner bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller = requestcontext.Caller(r.Context())
		gotOwner = requestcontext.IsOwner(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(testSigningKey, logger)(next)

	do := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	t.Run("missing bearer token", func(t *testing.T) {
		rr := do("")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		token := signToken(t, "other-key", callerClaims(jurorID.String(), ""))
		rr := do("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := callerClaims(jurorID.String(), "")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		rr := do("Bearer " + signToken(t, testSigningKey, claims))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("subject that is not a UUID", func(t *testing.T) {
		rr := do("Bearer " + signToken(t, testSigningKey, callerClaims("not-a-uuid", "")))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token injects the caller", func(t *testing.T) {
		rr := do("Bearer " + signToken(t, testSigningKey, callerClaims(jurorID.String(), "")))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, id.JurorID(jurorID), gotCaller)
		assert.False(t, gotOwner)
	})

	t.Run("owner role is carried through", func(t *testing.T) {
		rr := do("Bearer " + signToken(t, testSigningKey, callerClaims(jurorID.String(), "owner")))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, gotOwner)
	})
}
