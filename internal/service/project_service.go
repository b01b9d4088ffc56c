package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectService struct {
	projects ProjectRepository
}

func NewProjectService(projects ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, name, description string) (*models.Project, error) {
	if err := validateProjectName(name); err != nil {
		return nil, err
	}

	p := &models.Project{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	logger.Info("Service: project created",
		zap.String("project_id", p.ID.String()),
		zap.String("user_id", userID.String()))
	return p, nil
}

func (s *ProjectService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Project, error) {
	return s.getOwned(ctx, userID, id)
}

func (s *ProjectService) List(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	projects, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, id uuid.UUID, name, description string) (*models.Project, error) {
	p, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := validateProjectName(name); err != nil {
		return nil, err
	}

	p.Name = name
	p.Description = description
	if err := s.projects.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("project", id.String())
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return p, nil
}

// Delete removes the project. Tasks assigned to it survive with their
// project link cleared (ON DELETE SET NULL in the schema).
func (s *ProjectService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("project", id.String())
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	logger.Info("Service: project deleted", zap.String("project_id", id.String()))
	return nil
}

func (s *ProjectService) getOwned(ctx context.Context, userID, id uuid.UUID) (*models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("project", id.String())
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if p.UserID != userID {
		return nil, NewNotFound("project", id.String())
	}
	return p, nil
}

func validateProjectName(name string) error {
	if name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if len(name) > 100 {
		return NewValidationError("name", "must be at most 100 characters")
	}
	return nil
}
