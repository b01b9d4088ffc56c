package handlers

import (
	"errors"
	"net/http"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/service"
	"go.uber.org/zap"
)

// respondServiceError translates a service error into an HTTP
// response. Business errors keep their code and details; anything
// else is a 500 with a generic body.
func respondServiceError(w http.ResponseWriter, err error) {
	var busErr *service.BusinessError
	if errors.As(err, &busErr) {
		statusCode := mapBusinessErrorToHTTP(busErr.Code)

		logger.Warn("HTTP: business error",
			zap.String("error_code", busErr.Code),
			zap.Int("http_status", statusCode))

		responseWithJSON(w, statusCode,
			toPayload("error", busErr.Code),
			toPayload("message", busErr.Message),
			toPayload("details", busErr.Details),
		)
		return
	}

	logger.Error("HTTP: internal error", err)
	responseWithJSON(w, http.StatusInternalServerError,
		toPayload("error", "INTERNAL"),
		toPayload("message", "internal server error"),
	)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	case service.CodeCSRF:
		return http.StatusForbidden
	case service.CodeDuplicate, service.CodeVersionConflict, service.CodeDependency:
		return http.StatusConflict
	case service.CodeTokenExpired, service.CodeTokenUsed:
		return http.StatusGone
	default:
		return http.StatusBadRequest
	}
}
