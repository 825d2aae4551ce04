package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/upb/taskboard-api/middleware"
	"github.com/upb/taskboard-api/services"
	"github.com/upb/taskboard-api/utils"
	"go.uber.org/zap"
)

// CurrentIdentityResponse is the response body for GET /api/me
type CurrentIdentityResponse struct {
	Subject   string                     `json:"sub"`
	IssuedAt  *time.Time                 `json:"issued_at,omitempty"`
	ExpiresAt *time.Time                 `json:"expires_at,omitempty"`
	Claims    map[string]json.RawMessage `json:"claims"`
}

// CurrentIdentity returns the verified subject and its pass-through claims
func CurrentIdentity(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.GetClaimSetFromContext(r.Context())
		if claims == nil {
			HandleServiceError(w, services.ErrMissingToken, requestLogger(logger, r))
			return
		}

		response := CurrentIdentityResponse{
			Subject: claims.Subject,
			Claims:  claims.Extra,
		}
		if response.Claims == nil {
			response.Claims = map[string]json.RawMessage{}
		}
		if !claims.IssuedAt.IsZero() {
			iat := claims.IssuedAt.UTC()
			response.IssuedAt = &iat
		}
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt.UTC()
			response.ExpiresAt = &exp
		}

		if err := utils.WriteOK(w, response); err != nil {
			logger.Error("failed to write identity response", zap.Error(err))
		}
	}
}
