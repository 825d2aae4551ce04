package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/taskboard-api/utils"
	"go.uber.org/zap"
)

// ServiceName is reported by the root banner
const ServiceName = "taskboard-api"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// BannerResponse is served on GET /
type BannerResponse struct {
	Service     string `json:"service"`
	Environment string `json:"environment"`
	Status      string `json:"status"`
}

// HealthChecker reports whether a backing store is usable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db          HealthChecker
	environment string
	logger      *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db may be nil when no
// database is wired, in which case readiness fails.
func NewHealthHandler(db HealthChecker, environment string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		environment: environment,
		logger:      logger,
	}
}

// HandleRoot handles GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, BannerResponse{
		Service:     ServiceName,
		Environment: h.environment,
		Status:      "running",
	})
}

// HandleHealth handles GET /health
// Liveness only; always 200 while the process serves requests
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /health/ready
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"
	httpStatus := http.StatusOK

	switch {
	case h.db == nil:
		checks["database"] = "not_configured"
	default:
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}
	}

	if checks["database"] != "healthy" {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
