package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	"taskmanager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: failed to decode JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.tasks.CreateTask(
		r.Context(),
		caller.ID,
		request.Title,
		request.Description,
		task.Status(request.Status),
		task.Priority(request.Priority),
		request.DueDate,
	)
	if err != nil {
		handleServiceError(w, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)))
	responseWithBody(w, http.StatusOK, dto.FromTask(created))
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), caller.ID)
	if err != nil {
		handleServiceError(w, err, "list_tasks")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	t, err := h.tasks.GetTask(r.Context(), id, caller.ID)
	if err != nil {
		handleServiceError(w, err, "get_task")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: failed to decode JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	options, err := buildUpdateOptions(&request)
	if err != nil {
		handleServiceError(w, err, "update_task")
		return
	}

	updated, err := h.tasks.UpdateTask(r.Context(), id, caller.ID, options...)
	if err != nil {
		handleServiceError(w, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: task updated",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)))
	responseWithBody(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), id, caller.ID); err != nil {
		handleServiceError(w, err, "delete_task")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("message", "task removed"))
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")

	if err := h.tasks.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

// buildUpdateOptions validates the supplied fields and turns them into
// update options. The status option is appended before the priority option,
// which fixes the activity-log entry order when both change.
func buildUpdateOptions(request *dto.UpdateTaskRequest) ([]service.UpdateOption, error) {
	options := []service.UpdateOption{}

	if request.Title != nil {
		if len(strings.TrimSpace(*request.Title)) < 3 {
			return nil, service.NewValidationError("title", "must be at least 3 characters")
		}
		options = append(options, service.WithTitle(strings.TrimSpace(*request.Title)))
	}

	if request.Description != nil {
		if *request.Description == "" {
			return nil, service.NewValidationError("description", "must not be empty")
		}
		options = append(options, service.WithDescription(*request.Description))
	}

	if request.Status != nil {
		if !request.Status.Valid() {
			return nil, service.NewValidationError("status", "must be one of: Not Started, In Progress, Completed")
		}
		options = append(options, service.WithStatus(*request.Status))
	}

	if request.Priority != nil {
		if !request.Priority.Valid() {
			return nil, service.NewValidationError("priority", "must be one of: Low, Medium, High")
		}
		options = append(options, service.WithPriority(*request.Priority))
	}

	if request.DueDate != nil {
		options = append(options, service.WithDueDate(*request.DueDate))
	}

	return options, nil
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: failed to parse id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid task id: "+err.Error())
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		responseWithError(w, http.StatusBadRequest, "task id must not be empty")
		return uuid.Nil, false
	}

	return id, true
}
