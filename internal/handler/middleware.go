package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/haulhire/leadpool-engine-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const claimsContextKey contextKey = "operatorClaims"

// JWTAuthMiddleware validates the bearer token on admin routes and
// stores the operator claims in the request context.
func JWTAuthMiddleware(auth *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := auth.ValidateAccessToken(token)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates mutating routes behind the admin role. Read-only
// reporting stays open to plain operators.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil || claims.Role != service.RoleAdmin {
				logger.Warn("admin route denied",
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusForbidden, "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SchedulerKeyMiddleware guards the internal trigger route with the
// static key the external scheduler presents.
func SchedulerKeyMiddleware(auth *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Scheduler-Key")
			if key == "" {
				writeError(w, http.StatusUnauthorized, "missing scheduler key")
				return
			}
			if err := auth.CheckSchedulerKey(key); err != nil {
				handleServiceError(w, err, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the operator claims stored by the auth
// middleware, or nil outside an authenticated request.
func ClaimsFromContext(ctx context.Context) *service.OperatorClaims {
	claims, _ := ctx.Value(claimsContextKey).(*service.OperatorClaims)
	return claims
}
