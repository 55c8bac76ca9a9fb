package middleware

import (
	"context"
	"net/http"
	"strings"

	"viralclip/internal/util"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	UserContextKey   = contextKey("user")
	ClaimsContextKey = contextKey("claims")
)

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token subject under UserContextKey.
func AuthMiddleware(jwtSecret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("middleware", "auth").Logger()
	verifier, verifierErr := util.NewVerifier(jwtSecret)
	if verifierErr != nil {
		logger.Error().Err(verifierErr).Msg("JWT key material is unusable; all requests will be rejected")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("Authorization header missing")
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Warn().Str("path", r.URL.Path).Msg("Invalid authorization header")
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}
			if verifier == nil {
				http.Error(w, "Authentication unavailable", http.StatusInternalServerError)
				return
			}
			claims, err := verifier.Verify(parts[1])
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalid token")
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, claims.Subject)
			ctx = context.WithValue(ctx, ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(ctx context.Context) *util.Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*util.Claims)
	return claims
}
