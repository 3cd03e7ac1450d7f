package memory

import (
	"context"
	"sync"
	"time"

	"atelier-learning-service/internal/domain"
)

// UserStore is an in-memory implementation of auth.UserStore.
type UserStore struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]domain.User)}
}

func (s *UserStore) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.User{}, domain.ErrEmailTaken
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *UserStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}
