package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(s *Storage) *SessionRepo {
	return &SessionRepo{pool: s.pool}
}

func (r *SessionRepo) Create(ctx context.Context, sess *models.Session) error {
	start := time.Now()
	defer warnIfSlow("sessions.create", start)

	query := `INSERT INTO sessions (id, user_id, csrf_token, created_at, expires_at)
			VALUES ($1, $2, $3, NOW(), $4)
			RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, sess.ID, sess.UserID, sess.CSRFToken, sess.ExpiresAt).Scan(&sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", translateErr(err))
	}
	return nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	start := time.Now()
	defer warnIfSlow("sessions.get_by_id", start)

	query := `SELECT id, user_id, csrf_token, created_at, expires_at
			FROM sessions WHERE id = $1`

	sess := &models.Session{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.CSRFToken,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting session: %w", translateErr(err))
	}
	return sess, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("sessions.delete", start)

	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteForUser drops every session of one user, e.g. after a
// password reset.
func (r *SessionRepo) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("sessions.delete_for_user", start)

	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting user sessions: %w", translateErr(err))
	}
	return nil
}

// DeleteExpired prunes stale sessions; the reminder worker calls this
// every tick.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	defer warnIfSlow("sessions.delete_expired", start)

	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", translateErr(err))
	}
	return tag.RowsAffected(), nil
}
