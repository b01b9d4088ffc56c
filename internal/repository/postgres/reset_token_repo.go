package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResetTokenRepo struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepo(s *Storage) *ResetTokenRepo {
	return &ResetTokenRepo{pool: s.pool}
}

func (r *ResetTokenRepo) Create(ctx context.Context, t *models.PasswordResetToken) error {
	start := time.Now()
	defer warnIfSlow("reset_tokens.create", start)

	query := `INSERT INTO password_reset_tokens (id, user_id, token_hash, used, expires_at, created_at)
			VALUES ($1, $2, $3, FALSE, $4, NOW())
			RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, t.ID, t.UserID, t.TokenHash, t.ExpiresAt).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting reset token: %w", translateErr(err))
	}
	return nil
}

func (r *ResetTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	start := time.Now()
	defer warnIfSlow("reset_tokens.get_by_hash", start)

	query := `SELECT id, user_id, token_hash, used, expires_at, created_at
			FROM password_reset_tokens WHERE token_hash = $1`

	t := &models.PasswordResetToken{}
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.Used,
		&t.ExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting reset token: %w", translateErr(err))
	}
	return t, nil
}

// MarkUsed is conditional on the token still being unused so two
// concurrent confirms cannot both succeed.
func (r *ResetTokenRepo) MarkUsed(ctx context.Context, t *models.PasswordResetToken) error {
	start := time.Now()
	defer warnIfSlow("reset_tokens.mark_used", start)

	tag, err := r.pool.Exec(ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE id = $1 AND NOT used`, t.ID)
	if err != nil {
		return fmt.Errorf("marking reset token used: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrVersionConflict
	}
	t.Used = true
	return nil
}
