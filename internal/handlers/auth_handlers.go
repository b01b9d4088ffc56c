package handlers

import (
	"net/http"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/handlers/dto"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/middleware"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CookieSettings struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	auth   AuthService
	cookie CookieSettings
}

func NewAuthHandler(auth AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	user, session, err := h.auth.Register(r.Context(), request.Username, request.Email, request.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session)
	logger.Info("HTTP_OUT: user registered",
		zap.String("user_id", user.ID.String()),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated,
		toPayload("user", dto.FromUser(user)),
		toPayload("csrf_token", session.CSRFToken),
	)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	var oldSessionID *uuid.UUID
	if session := middleware.SessionFromContext(r.Context()); session != nil {
		oldSessionID = &session.ID
	}

	user, session, err := h.auth.Login(r.Context(), request.Login, request.Password, oldSessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session)
	logger.Info("HTTP_OUT: user logged in",
		zap.String("user_id", user.ID.String()),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("user", dto.FromUser(user)),
		toPayload("csrf_token", session.CSRFToken),
	)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	session := middleware.SessionFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), session.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	h.clearSessionCookie(w)
	responseWithJSON(w, http.StatusOK, toPayload("message", "logged out"))
}

// CSRFToken is the SPA's bootstrap call: it guarantees a session
// exists (anonymous if nobody is logged in) and hands back the token
// bound to it.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var sessionID *uuid.UUID
	if session := middleware.SessionFromContext(r.Context()); session != nil {
		sessionID = &session.ID
	}

	session, created, err := h.auth.EnsureSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if created {
		h.setSessionCookie(w, session)
	}

	responseWithJSON(w, http.StatusOK, toPayload("csrf_token", session.CSRFToken))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	session := middleware.SessionFromContext(r.Context())
	user, err := h.auth.CurrentUser(r.Context(), session)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromUser(user))
}

func (h *AuthHandler) PasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.PasswordResetRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), request.Email); err != nil {
		respondServiceError(w, err)
		return
	}

	// Same body whether or not the address exists.
	responseWithJSON(w, http.StatusOK,
		toPayload("message", "if that address is registered, a reset mail is on its way"))
}

func (h *AuthHandler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.PasswordResetConfirm
	if !decodeAndValidate(w, r, &request) {
		return
	}

	if err := h.auth.ConfirmPasswordReset(r.Context(), request.Token, request.Password); err != nil {
		respondServiceError(w, err)
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("message", "password updated"))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.ID.String(),
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
