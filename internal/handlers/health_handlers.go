package handlers

import (
	"net/http"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
)

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")

	if err := h.checker.HealthCheck(r.Context()); err != nil {
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "degraded"),
			toPayload("error", "database unreachable"),
		)
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}
