package handlers

import (
	"net/http"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/handlers/dto"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
)

type NotificationHandler struct {
	notifications NotificationService
}

func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List is the polling endpoint. It always returns the full set of
// currently visible notifications; clients dedup by ID.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	notifications, err := h.notifications.List(r.Context(), userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromNotificationList(notifications))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(r.Context(), userID(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromNotification(n))
}

func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	n, err := h.notifications.Dismiss(r.Context(), userID(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromNotification(n))
}

func (h *NotificationHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	// An empty body means "snooze for the default".
	request := dto.SnoozeRequest{}
	if r.ContentLength > 0 {
		if !decodeAndValidate(w, r, &request) {
			return
		}
	}

	n, err := h.notifications.Snooze(r.Context(), userID(r), id, request.Minutes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromNotification(n))
}
