package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/taskboard-api/auth"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// ClaimSetKey is the context key for the verified token claims
	ClaimSetKey contextKey = "claim_set"
)

// GetRequestIDFromContext retrieves the request ID from context. It falls
// back to the id assigned by chi's RequestID middleware.
func GetRequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		return requestID
	}
	return chimw.GetReqID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetClaimSetFromContext retrieves the verified claims from context
func GetClaimSetFromContext(ctx context.Context) *auth.ClaimSet {
	if claims, ok := ctx.Value(ClaimSetKey).(*auth.ClaimSet); ok {
		return claims
	}
	return nil
}

// WithClaimSet adds verified claims to the context
func WithClaimSet(ctx context.Context, claims *auth.ClaimSet) context.Context {
	return context.WithValue(ctx, ClaimSetKey, claims)
}

// GetSubjectFromContext returns the authenticated subject, or "" when the
// request was not authenticated
func GetSubjectFromContext(ctx context.Context) string {
	if claims := GetClaimSetFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
