package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/taskboard-api/middleware"
	"github.com/upb/taskboard-api/models"
	"github.com/upb/taskboard-api/services"
	"github.com/upb/taskboard-api/services/tasks"
	"github.com/upb/taskboard-api/utils"
	"go.uber.org/zap"
)

// TaskService is the business API the task handlers call
type TaskService interface {
	List(ctx context.Context, subject string, req tasks.ListTasksRequest) ([]*models.Task, error)
	Create(ctx context.Context, subject string, req tasks.CreateTaskRequest) (*models.Task, error)
	Get(ctx context.Context, subject string, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, subject string, id uuid.UUID, req tasks.UpdateTaskRequest) (*models.Task, error)
	ToggleComplete(ctx context.Context, subject string, id uuid.UUID) (*models.Task, error)
	Delete(ctx context.Context, subject string, id uuid.UUID) error
}

// TaskHandler handles the /api/tasks routes
type TaskHandler struct {
	service TaskService
	logger  *zap.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(service TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger,
	}
}

// HandleList handles GET /api/tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(w, r)
	if !ok {
		return
	}

	req, err := parseListQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.service.List(r.Context(), subject, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, utils.WriteOK(w, list))
}

// HandleCreate handles POST /api/tasks
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req tasks.CreateTaskRequest
	if err := utils.DecodeAndValidate(r.Body, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	task, err := h.service.Create(r.Context(), subject, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, utils.WriteCreated(w, task))
}

// HandleGet handles GET /api/tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	subject, id, ok := h.subjectAndID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), subject, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, utils.WriteOK(w, task))
}

// HandleUpdate handles PUT /api/tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	subject, id, ok := h.subjectAndID(w, r)
	if !ok {
		return
	}

	var req tasks.UpdateTaskRequest
	if err := utils.DecodeAndValidate(r.Body, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	task, err := h.service.Update(r.Context(), subject, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, utils.WriteOK(w, task))
}

// HandleToggleComplete handles PATCH /api/tasks/{id}/complete
func (h *TaskHandler) HandleToggleComplete(w http.ResponseWriter, r *http.Request) {
	subject, id, ok := h.subjectAndID(w, r)
	if !ok {
		return
	}

	task, err := h.service.ToggleComplete(r.Context(), subject, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, utils.WriteOK(w, task))
}

// HandleDelete handles DELETE /api/tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	subject, id, ok := h.subjectAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), subject, id); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteNoContent(w)
}

func (h *TaskHandler) subject(w http.ResponseWriter, r *http.Request) (string, bool) {
	subject := middleware.GetSubjectFromContext(r.Context())
	if subject == "" {
		h.fail(w, r, services.ErrMissingToken)
		return "", false
	}
	return subject, true
}

func (h *TaskHandler) subjectAndID(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	subject, ok := h.subject(w, r)
	if !ok {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, utils.NewValidationError(utils.PathFieldError("id", "Input should be a valid UUID")))
		return "", uuid.Nil, false
	}
	return subject, id, true
}

func (h *TaskHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	HandleServiceError(w, err, requestLogger(h.logger, r))
}

func (h *TaskHandler) write(w http.ResponseWriter, err error) {
	if err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// parseListQuery reads completed, limit and offset, reporting every invalid
// parameter in one validation error
func parseListQuery(r *http.Request) (tasks.ListTasksRequest, error) {
	query := r.URL.Query()
	var (
		req    tasks.ListTasksRequest
		fields []utils.FieldError
	)

	if raw := query.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			fields = append(fields, utils.QueryFieldError("completed", "Input should be a valid boolean"))
		} else {
			req.Completed = &completed
		}
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			fields = append(fields, utils.QueryFieldError("limit", "Input should be a valid integer"))
		case limit < 1:
			fields = append(fields, utils.QueryFieldError("limit", "Input should be greater than or equal to 1"))
		case limit > tasks.MaxLimit:
			fields = append(fields, utils.QueryFieldError("limit", "Input should be less than or equal to "+strconv.Itoa(tasks.MaxLimit)))
		default:
			req.Limit = limit
		}
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			fields = append(fields, utils.QueryFieldError("offset", "Input should be a valid integer"))
		case offset < 0:
			fields = append(fields, utils.QueryFieldError("offset", "Input should be greater than or equal to 0"))
		default:
			req.Offset = offset
		}
	}

	if len(fields) > 0 {
		return req, utils.NewValidationError(fields...)
	}
	return req, nil
}
