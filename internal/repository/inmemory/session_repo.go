package inmemory

import (
	"context"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
)

func (s *SessionStorage) Create(ctx context.Context, sess *models.Session) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return repository.ErrDuplicate
	}
	sess.CreatedAt = time.Now()
	clone := *sess
	s.sessions[sess.ID] = &clone
	return nil
}

func (s *SessionStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *SessionStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStorage) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for id, sess := range s.sessions {
		if sess.UserID != nil && *sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *SessionStorage) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var removed int64
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
