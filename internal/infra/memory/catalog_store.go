package memory

import (
	"context"
	"sort"
	"sync"

	"atelier-learning-service/internal/domain"
)

// CatalogStore is an in-memory implementation of app.CatalogStore, useful for
// tests and for running the server without Postgres.
type CatalogStore struct {
	mu        sync.RWMutex
	modules   []domain.Module
	lessons   map[string][]domain.Lesson
	questions map[string][]domain.QuizQuestion
}

func NewCatalogStore(modules []domain.Module, lessons []domain.Lesson, questions []domain.QuizQuestion) *CatalogStore {
	s := &CatalogStore{
		lessons:   make(map[string][]domain.Lesson),
		questions: make(map[string][]domain.QuizQuestion),
	}
	s.modules = append(s.modules, modules...)
	// Newest-created-first, matching the backing store's ordering contract.
	sort.SliceStable(s.modules, func(i, j int) bool {
		return s.modules[i].CreatedAt.After(s.modules[j].CreatedAt)
	})
	for _, l := range lessons {
		s.lessons[l.ModuleID] = append(s.lessons[l.ModuleID], l)
	}
	for id := range s.lessons {
		ls := s.lessons[id]
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].OrderIndex < ls[j].OrderIndex })
	}
	for _, q := range questions {
		s.questions[q.ModuleID] = append(s.questions[q.ModuleID], q)
	}
	return s
}

func (s *CatalogStore) ListModules(_ context.Context) ([]domain.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Module, len(s.modules))
	copy(out, s.modules)
	return out, nil
}

func (s *CatalogStore) GetModule(_ context.Context, moduleID string) (domain.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.modules {
		if m.ID == moduleID {
			return m, nil
		}
	}
	return domain.Module{}, domain.ErrModuleNotFound
}

func (s *CatalogStore) ListLessons(_ context.Context, moduleID string) ([]domain.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Lesson, len(s.lessons[moduleID]))
	copy(out, s.lessons[moduleID])
	return out, nil
}

func (s *CatalogStore) ListQuizQuestions(_ context.Context, moduleID string) ([]domain.QuizQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizQuestion, len(s.questions[moduleID]))
	copy(out, s.questions[moduleID])
	return out, nil
}

func (s *CatalogStore) CountQuizQuestions(_ context.Context, moduleID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions[moduleID]), nil
}
