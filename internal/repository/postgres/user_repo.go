package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(s *Storage) *UserRepo {
	return &UserRepo{pool: s.pool}
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	start := time.Now()
	defer warnIfSlow("users.create", start)

	query := `INSERT INTO users (id, username, email, password_hash, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
	).Scan(&u.CreatedAt)

	if err != nil {
		return fmt.Errorf("inserting user: %w", translateErr(err))
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	start := time.Now()
	defer warnIfSlow("users.get_by_id", start)

	query := `SELECT id, username, email, password_hash, created_at, updated_at
			FROM users WHERE id = $1`

	u := &models.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting user: %w", translateErr(err))
	}
	return u, nil
}

// GetByLogin resolves a login identifier that may be either a
// username or an email address.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	start := time.Now()
	defer warnIfSlow("users.get_by_login", start)

	query := `SELECT id, username, email, password_hash, created_at, updated_at
			FROM users WHERE username = $1 OR email = $1`

	u := &models.User{}
	err := r.pool.QueryRow(ctx, query, login).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting user by login: %w", translateErr(err))
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	start := time.Now()
	defer warnIfSlow("users.get_by_email", start)

	query := `SELECT id, username, email, password_hash, created_at, updated_at
			FROM users WHERE email = $1`

	u := &models.User{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting user by email: %w", translateErr(err))
	}
	return u, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	start := time.Now()
	defer warnIfSlow("users.update_password", start)

	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		logger.Warn("Repository: password update for missing user")
		return fmt.Errorf("updating password: %w", repository.ErrNotFound)
	}
	return nil
}
