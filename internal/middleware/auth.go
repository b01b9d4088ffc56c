package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const SessionKey contextKey = "session"

// SessionResolver is the slice of the auth service the middleware
// needs.
type SessionResolver interface {
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
}

// Session loads the session referenced by the auth cookie into the
// request context. Missing or invalid cookies are not an error here;
// RequireAuth and CSRF decide what to do about an absent session.
func Session(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			sessionID, err := uuid.Parse(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			session, err := resolver.GetSession(r.Context(), sessionID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFromContext(ctx context.Context) *models.Session {
	if s, ok := ctx.Value(SessionKey).(*models.Session); ok {
		return s
	}
	return nil
}

// RequireAuth rejects requests without a logged-in session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil || !session.Authenticated() {
			logger.Warn("HTTP: unauthenticated request",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("path", r.URL.Path))
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CSRF enforces the double-check on mutating methods: the request must
// carry a session (cookie) and an X-CSRF-Token header matching the
// token bound to that session. GET/HEAD/OPTIONS pass through.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		session := SessionFromContext(r.Context())
		if session == nil {
			writeAuthError(w, http.StatusForbidden, "CSRF_FAILED", "missing session, fetch /api/csrf-token first")
			return
		}

		header := r.Header.Get("X-CSRF-Token")
		if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(session.CSRFToken)) != 1 {
			logger.Warn("HTTP: CSRF token mismatch",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("path", r.URL.Path))
			writeAuthError(w, http.StatusForbidden, "CSRF_FAILED", "invalid CSRF token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error":   code,
		"message": message,
	})
}
