package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/middleware"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	// A caller-supplied ID is kept.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "my-trace-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "my-trace-id", seen)
}

func TestRateLimit_BlocksWhenExceeded(t *testing.T) {
	handler := middleware.RateLimit(3)(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["error"])
}

func TestRateLimit_IsPerIP(t *testing.T) {
	handler := middleware.RateLimit(1)(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1111"
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:2222"

	for _, req := range []*http.Request{first, second} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

type staticResolver struct {
	session *models.Session
}

func (s staticResolver) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	if s.session != nil && s.session.ID == sessionID {
		return s.session, nil
	}
	return nil, context.Canceled
}

func authedSession() *models.Session {
	userID := uuid.New()
	return &models.Session{
		ID:        uuid.New(),
		UserID:    &userID,
		CSRFToken: "expected-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestSession_LoadsFromCookie(t *testing.T) {
	session := authedSession()
	var got *models.Session
	handler := middleware.Session(staticResolver{session}, "sid")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = middleware.SessionFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: session.ID.String()})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)

	// Garbage cookie values fall through without a session.
	got = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-uuid"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, got)
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name    string
		session *models.Session
		want    int
	}{
		{"no session", nil, http.StatusUnauthorized},
		{"anonymous session", &models.Session{ID: uuid.New()}, http.StatusUnauthorized},
		{"authenticated", authedSession(), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequireAuth(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != nil {
				ctx := context.WithValue(req.Context(), middleware.SessionKey, tt.session)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCSRF(t *testing.T) {
	session := authedSession()

	tests := []struct {
		name    string
		method  string
		session *models.Session
		header  string
		want    int
	}{
		{"GET passes without token", http.MethodGet, nil, "", http.StatusOK},
		{"POST without session", http.MethodPost, nil, "expected-token", http.StatusForbidden},
		{"POST without header", http.MethodPost, session, "", http.StatusForbidden},
		{"POST with wrong token", http.MethodPost, session, "forged", http.StatusForbidden},
		{"POST with matching token", http.MethodPost, session, "expected-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CSRF(okHandler())
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.session != nil {
				ctx := context.WithValue(req.Context(), middleware.SessionKey, tt.session)
				req = req.WithContext(ctx)
			}
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	handler := middleware.Timeout(50 * time.Millisecond)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasDeadline = r.Context().Deadline()
		}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}
