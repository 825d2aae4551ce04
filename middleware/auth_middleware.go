package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/upb/taskboard-api/auth"
	"github.com/upb/taskboard-api/internal/observability"
	"github.com/upb/taskboard-api/services"
	"go.uber.org/zap"
)

// TokenVerifier checks a raw bearer token at the given instant
type TokenVerifier interface {
	Verify(token string, now time.Time) (*auth.ClaimSet, error)
}

// ErrorWriter renders err as the API error envelope
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	verifier   TokenVerifier
	clock      auth.Clock
	writeError ErrorWriter
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. A nil clock uses time.Now.
func NewAuthMiddleware(verifier TokenVerifier, clock auth.Clock, writeError ErrorWriter, logger *zap.Logger) *AuthMiddleware {
	if clock == nil {
		clock = time.Now
	}
	return &AuthMiddleware{
		verifier:   verifier,
		clock:      clock,
		writeError: writeError,
		logger:     logger,
	}
}

// RequireAuth rejects requests without a valid bearer token and attaches
// the verified claims to the request context otherwise
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			observability.AuthVerificationsTotal.WithLabelValues(observability.AuthResultMissing).Inc()
			m.logger.Warn("missing bearer token",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			m.writeError(w, r, services.ErrMissingToken)
			return
		}

		claims, err := m.verifier.Verify(token, m.clock())
		if err != nil {
			result := "error"
			if reason, ok := auth.GetFailureReason(err); ok {
				result = string(reason)
			}
			observability.AuthVerificationsTotal.WithLabelValues(result).Inc()
			m.logger.Warn("token verification failed",
				zap.String("request_id", requestID),
				zap.String("reason", result))
			m.writeError(w, r, err)
			return
		}

		observability.AuthVerificationsTotal.WithLabelValues(observability.AuthResultAccepted).Inc()
		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", claims.Subject))

		next.ServeHTTP(w, r.WithContext(WithClaimSet(ctx, claims)))
	})
}

// extractBearerToken extracts the Bearer token from the Authorization header.
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
