package handlers

import (
	"net/http"
	"strconv"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/handlers/dto"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/middleware"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
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

// userID pulls the authenticated user out of the session context.
// Routes using it sit behind RequireAuth, so the session is present.
func userID(r *http.Request) uuid.UUID {
	return *middleware.SessionFromContext(r.Context()).UserID
}

// parseIDParam reads the {id} route parameter. On failure it answers
// the request itself.
func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: bad id parameter",
			zap.String("id", idParam),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid id parameter")
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter := models.TaskFilter{}
	q := r.URL.Query()

	if raw := q.Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, "invalid project_id filter")
			return
		}
		filter.ProjectID = &id
	}
	if raw := q.Get("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, "invalid parent_id filter")
			return
		}
		filter.ParentID = &id
	}
	if raw := q.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, "invalid completed filter")
			return
		}
		filter.Completed = &completed
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	tasks, err := h.tasks.List(r.Context(), userID(r), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	task := &models.Task{
		UserID:          userID(r),
		ProjectID:       request.ProjectID,
		ParentID:        request.ParentID,
		Title:           request.Title,
		Description:     request.Description,
		Priority:        request.Priority,
		StartDate:       request.StartDate,
		DueDate:         request.DueDate,
		Recurrence:      models.Recurrence(request.Recurrence),
		ReminderEnabled: request.ReminderEnabled,
		ReminderTime:    request.ReminderTime,
		Dependencies:    request.Dependencies,
	}

	created, err := h.tasks.Create(r.Context(), task)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", created.ID.String()),
		zap.Int("http_status", http.StatusCreated))
	responseWithBody(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(r.Context(), userID(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(task))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	options := taskOptionsFromRequest(&request)
	if len(options) == 0 {
		responseWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	task, err := h.tasks.Update(r.Context(), userID(r), id, options...)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: task updated",
		zap.String("task_id", task.ID.String()),
		zap.Int("http_status", http.StatusOK))
	responseWithBody(w, http.StatusOK, dto.FromTask(task))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID(r), id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	task, next, err := h.tasks.Complete(r.Context(), userID(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	payloads := []Payload{toPayload("task", dto.FromTask(task))}
	if next != nil {
		payloads = append(payloads, toPayload("next_occurrence", dto.FromTask(next)))
	}
	responseWithJSON(w, http.StatusOK, payloads...)
}

func (h *TaskHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Reopen(r.Context(), userID(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(task))
}

func taskOptionsFromRequest(request *dto.UpdateTaskRequest) []models.TaskOption {
	options := []models.TaskOption{}
	if request.Title != nil {
		options = append(options, models.WithTitle(*request.Title))
	}
	if request.Description != nil {
		options = append(options, models.WithDescription(*request.Description))
	}
	if request.Priority != nil {
		options = append(options, models.WithPriority(*request.Priority))
	}
	if request.ProjectID != nil {
		options = append(options, models.WithProject(request.ProjectID))
	} else if request.ClearProject {
		options = append(options, models.WithProject(nil))
	}
	if request.ParentID != nil {
		options = append(options, models.WithParent(request.ParentID))
	} else if request.ClearParent {
		options = append(options, models.WithParent(nil))
	}
	if request.StartDate != nil {
		options = append(options, models.WithStartDate(request.StartDate))
	} else if request.ClearStartDate {
		options = append(options, models.WithStartDate(nil))
	}
	if request.DueDate != nil {
		options = append(options, models.WithDueDate(request.DueDate))
	} else if request.ClearDueDate {
		options = append(options, models.WithDueDate(nil))
	}
	if request.Recurrence != nil {
		options = append(options, models.WithRecurrence(models.Recurrence(*request.Recurrence)))
	}
	if request.ReminderEnabled != nil || request.ReminderTime != nil {
		enabled := request.ReminderEnabled != nil && *request.ReminderEnabled
		if request.ReminderEnabled == nil {
			enabled = true
		}
		options = append(options, models.WithReminder(enabled, request.ReminderTime))
	}
	if request.Dependencies != nil {
		options = append(options, models.WithDependencies(*request.Dependencies))
	}
	return options
}
