package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server side of the auth cookie. Anonymous sessions
// (UserID == nil) exist so a client can fetch a CSRF token before it
// has logged in.
type Session struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	CSRFToken string     `json:"-" db:"csrf_token"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func (s *Session) Authenticated() bool {
	return s.UserID != nil
}
