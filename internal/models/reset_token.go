package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken stores only the SHA-256 of the emailed secret, so
// a database leak does not hand out usable reset links.
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	Used      bool      `json:"used" db:"used"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.Used && t.ExpiresAt.After(now)
}
