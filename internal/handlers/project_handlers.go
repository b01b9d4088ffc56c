package handlers

import (
	"net/http"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/handlers/dto"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects ProjectService
}

func NewProjectHandler(projects ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	projects, err := h.projects.List(r.Context(), userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromProjectList(projects))
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ProjectRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	project, err := h.projects.Create(r.Context(), userID(r), request.Name, request.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: project created",
		zap.String("project_id", project.ID.String()),
		zap.Int("http_status", http.StatusCreated))
	responseWithBody(w, http.StatusCreated, dto.FromProject(project))
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	project, err := h.projects.GetByID(r.Context(), userID(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromProject(project))
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var request dto.ProjectRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	project, err := h.projects.Update(r.Context(), userID(r), id, request.Name, request.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromProject(project))
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), userID(r), id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
