package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/requestcontext"
)

// Claims carried by bearer tokens. The transport layer authenticates the
// caller principal; the core trusts this identity as given and performs only
// authorization-logic checks.
type Claims struct {
	// Role is "owner" for the process owner, empty otherwise.
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// RequireAuth validates the bearer token and injects the caller principal
// (and owner role, when present) into the request context.
func RequireAuth(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	key := []byte(signingKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !parsed.Valid {
				logger.DebugContext(r.Context(), "token validation failed",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
				return
			}

			caller, err := id.ParseJurorID(claims.Subject)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token subject is not a valid principal"))
				return
			}

			ctx := requestcontext.WithCaller(r.Context(), caller)
			if claims.Role == "owner" {
				ctx = requestcontext.WithOwner(ctx, true)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
