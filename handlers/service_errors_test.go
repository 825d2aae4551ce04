package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/taskboard-api/auth"
	"github.com/upb/taskboard-api/services"
	"github.com/upb/taskboard-api/utils"
	"go.uber.org/zap"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "missing token",
			err:         services.ErrMissingToken,
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "MISSING_TOKEN",
			wantMessage: services.ErrMissingToken.Message,
		},
		{
			name:        "expired token",
			err:         &auth.VerificationError{Reason: auth.FailureExpired, Err: errors.New("token is expired")},
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "TOKEN_EXPIRED",
			wantMessage: "Your session has expired. Please sign in again.",
		},
		{
			name:        "malformed token",
			err:         &auth.VerificationError{Reason: auth.FailureMalformed, Err: errors.New("signature is invalid")},
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "INVALID_TOKEN",
			wantMessage: "Invalid authentication token. Please sign in again.",
		},
		{
			name:        "missing subject",
			err:         &auth.VerificationError{Reason: auth.FailureMissingSubject},
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "INVALID_TOKEN",
			wantMessage: "Invalid authentication token. Please sign in again.",
		},
		{
			name:        "wrapped verification failure",
			err:         fmt.Errorf("auth: %w", &auth.VerificationError{Reason: auth.FailureExpired}),
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "TOKEN_EXPIRED",
			wantMessage: "Your session has expired. Please sign in again.",
		},
		{
			name:        "forbidden",
			err:         services.Forbidden(errors.New("task belongs to user-7")),
			wantStatus:  http.StatusForbidden,
			wantCode:    "FORBIDDEN",
			wantMessage: services.ErrForbidden.Message,
		},
		{
			name:        "ownership change",
			err:         services.OwnershipChange("user-42", "user-7"),
			wantStatus:  http.StatusForbidden,
			wantCode:    "OWNERSHIP_CHANGE_FORBIDDEN",
			wantMessage: "Task ownership cannot be changed.",
		},
		{
			name:        "task not found",
			err:         services.TaskNotFound(errors.New("no rows")),
			wantStatus:  http.StatusNotFound,
			wantCode:    "TASK_NOT_FOUND",
			wantMessage: "Task not found.",
		},
		{
			name:        "resource not found",
			err:         services.ErrResourceNotFound,
			wantStatus:  http.StatusNotFound,
			wantCode:    "RESOURCE_NOT_FOUND",
			wantMessage: services.ErrResourceNotFound.Message,
		},
		{
			name:        "internal domain error",
			err:         services.WrapInternal("failed to list tasks", errors.New("pq: password authentication failed")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "An internal error occurred",
		},
		{
			name:        "unknown error",
			err:         errors.New("runtime error: invalid memory address"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "An internal error occurred",
		},
		{
			name:        "domain error with unknown code",
			err:         services.NewDomainError(services.ErrorTypeForbidden, "SOMETHING_NEW", "leaky detail", nil),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "An internal error occurred",
		},
		{
			name:        "nil error",
			err:         nil,
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := TranslateError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, envelope.ErrorCode)
			assert.Equal(t, tt.wantMessage, envelope.Message)
			assert.Nil(t, envelope.Details)
		})
	}
}

func TestTranslateError_Validation(t *testing.T) {
	err := utils.NewValidationError(
		utils.FieldError{Field: "title", Message: "Field required"},
		utils.FieldError{Field: "priority", Message: "Input should be a valid string"},
	)

	status, envelope := TranslateError(err)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_ERROR", envelope.ErrorCode)
	assert.Equal(t, "Invalid input data", envelope.Message)
	require.Len(t, envelope.Details, 2)
	assert.Equal(t, "title", envelope.Details[0].Field)
	assert.Equal(t, "priority", envelope.Details[1].Field)
}

func TestTranslateError_Deterministic(t *testing.T) {
	err := services.OwnershipChange("a", "b")
	s1, e1 := TranslateError(err)
	s2, e2 := TranslateError(err)
	assert.Equal(t, s1, s2)
	assert.Equal(t, e1, e2)
}

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	t.Run("writes envelope without details", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleServiceError(w, &auth.VerificationError{Reason: auth.FailureExpired}, logger)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "TOKEN_EXPIRED", body["error_code"])
		assert.NotContains(t, body, "details")
		assert.Len(t, body, 2)
	})

	t.Run("internal error hides the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleServiceError(w, errors.New("pq: relation \"tasks\" does not exist at 10.0.0.5"), logger)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, strings.Contains(w.Body.String(), "pq:"))
		assert.False(t, strings.Contains(w.Body.String(), "10.0.0.5"))
		assert.JSONEq(t, `{"error_code":"INTERNAL_ERROR","message":"An internal error occurred"}`, w.Body.String())
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleServiceError(w, nil, logger)
		assert.Equal(t, 0, w.Body.Len())
	})
}

func TestNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	NotFound(zap.NewNop())(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error_code":"RESOURCE_NOT_FOUND","message":"`+services.ErrResourceNotFound.Message+`"}`, w.Body.String())
}
