package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(s *Storage) *ProjectRepo {
	return &ProjectRepo{pool: s.pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	start := time.Now()
	defer warnIfSlow("projects.create", start)

	query := `INSERT INTO projects (id, user_id, name, description, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, p.ID, p.UserID, p.Name, p.Description).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting project: %w", translateErr(err))
	}
	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	start := time.Now()
	defer warnIfSlow("projects.get_by_id", start)

	query := `SELECT id, user_id, name, description, created_at, updated_at
			FROM projects WHERE id = $1`

	p := &models.Project{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting project: %w", translateErr(err))
	}
	return p, nil
}

func (r *ProjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	start := time.Now()
	defer warnIfSlow("projects.list", start)

	query := `SELECT id, user_id, name, description, created_at, updated_at
			FROM projects WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("selecting projects: %w", translateErr(err))
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p := &models.Project{}
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			logger.Warn("Repository: scanning project row", zap.Error(err))
			continue
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *models.Project) error {
	start := time.Now()
	defer warnIfSlow("projects.update", start)

	query := `UPDATE projects
			SET name = $1, description = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, p.Name, p.Description, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("updating project: %w", translateErr(err))
	}
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("projects.delete", start)

	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
