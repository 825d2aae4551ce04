package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/upb/taskboard-api/auth"
	"github.com/upb/taskboard-api/internal/observability"
	"github.com/upb/taskboard-api/middleware"
	"github.com/upb/taskboard-api/services"
	"github.com/upb/taskboard-api/utils"
	"go.uber.org/zap"
)

// Client-facing messages for token failures
const (
	msgTokenExpired   = "Your session has expired. Please sign in again."
	msgInvalidToken   = "Invalid authentication token. Please sign in again."
	msgInternalError  = "An internal error occurred"
	msgValidationFail = "Invalid input data"
)

var statusByCode = map[services.ErrorCode]int{
	services.CodeMissingToken:             http.StatusUnauthorized,
	services.CodeTokenExpired:             http.StatusUnauthorized,
	services.CodeInvalidToken:             http.StatusUnauthorized,
	services.CodeForbidden:                http.StatusForbidden,
	services.CodeOwnershipChangeForbidden: http.StatusForbidden,
	services.CodeTaskNotFound:             http.StatusNotFound,
	services.CodeResourceNotFound:         http.StatusNotFound,
	services.CodeValidationError:          http.StatusUnprocessableEntity,
}

// TranslateError maps any error to its HTTP status and error envelope.
// It is total: errors of unknown kind become INTERNAL_ERROR, and 500
// responses never carry text from the underlying error.
func TranslateError(err error) (int, utils.ErrorResponse) {
	var verificationErr *auth.VerificationError
	var validationErr *utils.ValidationError
	var domainErr *services.DomainError

	switch {
	case errors.As(err, &verificationErr):
		if verificationErr.Reason == auth.FailureExpired {
			return http.StatusUnauthorized, utils.ErrorResponse{
				ErrorCode: string(services.CodeTokenExpired),
				Message:   msgTokenExpired,
			}
		}
		return http.StatusUnauthorized, utils.ErrorResponse{
			ErrorCode: string(services.CodeInvalidToken),
			Message:   msgInvalidToken,
		}

	case errors.As(err, &validationErr):
		message := validationErr.Message
		if message == "" {
			message = msgValidationFail
		}
		var details []utils.FieldError
		if len(validationErr.Fields) > 0 {
			details = append(details, validationErr.Fields...)
		}
		return http.StatusUnprocessableEntity, utils.ErrorResponse{
			ErrorCode: string(services.CodeValidationError),
			Message:   message,
			Details:   details,
		}

	case errors.As(err, &domainErr):
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			break
		}
		return status, utils.ErrorResponse{
			ErrorCode: string(domainErr.Code),
			Message:   domainErr.Message,
		}
	}

	return http.StatusInternalServerError, utils.ErrorResponse{
		ErrorCode: string(services.CodeInternalError),
		Message:   msgInternalError,
	}
}

// HandleServiceError translates err and writes the envelope. It is the
// only place error responses are produced.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	status, envelope := TranslateError(err)
	observability.ErrorResponsesTotal.WithLabelValues(envelope.ErrorCode, strconv.Itoa(status)).Inc()

	if status >= http.StatusInternalServerError {
		logger.Error("internal server error",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
	} else {
		logger.Debug("handled service error",
			zap.Int("status", status),
			zap.String("error_code", envelope.ErrorCode),
			zap.Error(err))
	}

	if err := utils.WriteError(w, status, envelope); err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

// NewErrorWriter adapts HandleServiceError for middleware, tagging log
// lines with the request id
func NewErrorWriter(logger *zap.Logger) middleware.ErrorWriter {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		HandleServiceError(w, err, requestLogger(logger, r))
	}
}

// NotFound answers unknown routes and unsupported methods with RESOURCE_NOT_FOUND
func NotFound(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		HandleServiceError(w, services.ErrResourceNotFound, requestLogger(logger, r))
	}
}

func requestLogger(logger *zap.Logger, r *http.Request) *zap.Logger {
	if requestID := middleware.GetRequestIDFromContext(r.Context()); requestID != "" {
		return logger.With(zap.String("request_id", requestID))
	}
	return logger
}
