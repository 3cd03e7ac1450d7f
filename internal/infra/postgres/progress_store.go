package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"atelier-learning-service/internal/domain"
)

// ProgressStore persists completion records and stored progress rows.
type ProgressStore struct {
	pool *pgxpool.Pool
}

func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

func (s *ProgressStore) ListCompletedLessons(ctx context.Context, userID, moduleID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT lesson_id FROM lesson_progress WHERE user_id=$1 AND module_id=$2`, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list completed lessons: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lesson id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list completed lessons: %w", err)
	}
	return ids, nil
}

func (s *ProgressStore) InsertCompletion(ctx context.Context, record domain.LessonProgress) error {
	completedAt := record.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	// The unique (user_id, lesson_id) constraint keeps completion a boolean
	// fact; a duplicate insert is absorbed.
	_, err := s.pool.Exec(ctx, `INSERT INTO lesson_progress (id, user_id, lesson_id, module_id, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, lesson_id) DO NOTHING`,
		uuid.NewString(), record.UserID, record.LessonID, record.ModuleID, completedAt)
	if err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

func (s *ProgressStore) DeleteCompletion(ctx context.Context, userID, lessonID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM lesson_progress WHERE user_id=$1 AND lesson_id=$2`, userID, lessonID)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	return nil
}

func (s *ProgressStore) ListModuleProgress(ctx context.Context, userID string) ([]domain.ModuleProgress, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, module_id, completion_percentage, score, created_at
		FROM progress WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list module progress: %w", err)
	}
	defer rows.Close()

	var out []domain.ModuleProgress
	for rows.Next() {
		var p domain.ModuleProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.ModuleID, &p.CompletionPercentage, &p.Score, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list module progress: %w", err)
	}
	return out, nil
}

func (s *ProgressStore) UpsertQuizScore(ctx context.Context, userID, moduleID string, score int) error {
	// Best score wins; the stored completion percentage is an independent
	// input and is left alone here.
	_, err := s.pool.Exec(ctx, `INSERT INTO progress (id, user_id, module_id, score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, module_id) DO UPDATE SET score = GREATEST(progress.score, EXCLUDED.score)`,
		uuid.NewString(), userID, moduleID, score)
	if err != nil {
		return fmt.Errorf("upsert quiz score: %w", err)
	}
	return nil
}
