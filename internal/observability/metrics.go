package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for AuthVerificationsTotal.
const (
	AuthResultAccepted = "accepted"
	AuthResultMissing  = "missing_token"
)

var (
	// AuthVerificationsTotal counts bearer token checks by outcome. Rejected
	// tokens are labelled with their failure reason.
	//
	// Example usage:
	// observability.AuthVerificationsTotal.WithLabelValues("expired").Inc()
	AuthVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_auth_verifications_total",
			Help: "Number of bearer token verifications by result.",
		},
		[]string{"result"},
	)

	// ErrorResponsesTotal counts error envelopes written, by error code and status.
	ErrorResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_error_responses_total",
			Help: "Number of error responses by error code and HTTP status.",
		},
		[]string{"error_code", "status"},
	)

	// PanicsRecoveredTotal counts handler panics turned into internal errors.
	PanicsRecoveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskboard_panics_recovered_total",
			Help: "Number of handler panics recovered.",
		},
	)
)
