package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/upb/taskboard-api/internal/observability"
	"go.uber.org/zap"
)

// Recoverer turns a handler panic into an internal error envelope.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recoverer(writeError ErrorWriter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				observability.PanicsRecoveredTotal.Inc()
				logger.Error("panic recovered",
					zap.String("request_id", GetRequestIDFromContext(r.Context())),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()))

				writeError(w, r, fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
