package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"atelier-learning-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressRepository.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[string]domain.LessonProgress // keyed user|lesson
	rows    map[string]domain.ModuleProgress // keyed user|module
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		records: make(map[string]domain.LessonProgress),
		rows:    make(map[string]domain.ModuleProgress),
	}
}

func (s *ProgressStore) ListCompletedLessons(_ context.Context, userID, moduleID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, rec := range s.records {
		if rec.UserID == userID && rec.ModuleID == moduleID {
			ids = append(ids, rec.LessonID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *ProgressStore) InsertCompletion(_ context.Context, record domain.LessonProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// At most one record per (user, lesson); a repeat insert is absorbed.
	key := record.UserID + "|" + record.LessonID
	if _, ok := s.records[key]; ok {
		return nil
	}
	if record.CompletedAt.IsZero() {
		record.CompletedAt = time.Now()
	}
	s.records[key] = record
	return nil
}

func (s *ProgressStore) DeleteCompletion(_ context.Context, userID, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID+"|"+lessonID)
	return nil
}

func (s *ProgressStore) ListModuleProgress(_ context.Context, userID string) ([]domain.ModuleProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []domain.ModuleProgress
	for _, row := range s.rows {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

func (s *ProgressStore) UpsertQuizScore(_ context.Context, userID, moduleID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "|" + moduleID
	row, ok := s.rows[key]
	if !ok {
		row = domain.ModuleProgress{
			ID:        uuid.NewString(),
			UserID:    userID,
			ModuleID:  moduleID,
			CreatedAt: time.Now(),
		}
	}
	if score > row.Score {
		row.Score = score
	}
	s.rows[key] = row
	return nil
}

// CompletionCount reports the number of stored records, for tests.
func (s *ProgressStore) CompletionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
