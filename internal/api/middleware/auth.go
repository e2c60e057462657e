package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/auth"
)

type contextKeyAuth string

const claimsKey contextKeyAuth = "claims"

// ClaimsFromContext returns the verified token claims for the request, or
// nil when the request is unauthenticated.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// Authenticate verifies the Bearer token and stores the claims in the
// request context. Requests without a valid token are rejected.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Authentication required", problem.WithDetail("missing bearer token"))
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("rejected access token")
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Authentication required", problem.WithDetail("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose role ranks below the
// minimum. Must run after Authenticate.
func RequireRole(minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Authentication required")
				return
			}
			if !auth.RoleAtLeast(claims.Role, minimum) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
					"Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
