package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
)

func (s *ProjectStorage) Create(ctx context.Context, p *models.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.projects[p.ID]; exists {
		return repository.ErrDuplicate
	}
	p.CreatedAt = time.Now()
	clone := *p
	s.projects[p.ID] = &clone
	return nil
}

func (s *ProjectStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *ProjectStorage) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	projects := []*models.Project{}
	for _, p := range s.projects {
		if p.UserID == userID {
			clone := *p
			projects = append(projects, &clone)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

func (s *ProjectStorage) Update(ctx context.Context, p *models.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[p.ID]; !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	p.UpdatedAt = &now
	clone := *p
	s.projects[p.ID] = &clone
	return nil
}

func (s *ProjectStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.projects, id)
	if s.tasks != nil {
		s.tasks.clearProject(id)
	}
	return nil
}
