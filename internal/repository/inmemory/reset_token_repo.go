package inmemory

import (
	"context"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
)

func (s *ResetTokenStorage) Create(ctx context.Context, t *models.PasswordResetToken) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.tokens {
		if existing.TokenHash == t.TokenHash {
			return repository.ErrDuplicate
		}
	}
	t.CreatedAt = time.Now()
	clone := *t
	s.tokens[t.ID] = &clone
	return nil
}

func (s *ResetTokenStorage) GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, t := range s.tokens {
		if t.TokenHash == tokenHash {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *ResetTokenStorage) MarkUsed(ctx context.Context, t *models.PasswordResetToken) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tokens[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Used {
		return repository.ErrVersionConflict
	}
	stored.Used = true
	t.Used = true
	return nil
}
