package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"atelier-learning-service/internal/domain"
)

// CatalogStore reads module, lesson, and quiz rows from Postgres.
type CatalogStore struct {
	pool *pgxpool.Pool
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const moduleColumns = `id, title, category, level, description, is_premium,
	COALESCE(thumbnail_url, ''), lessons_count, COALESCE(duration, ''),
	COALESCE(rating, 0), COALESCE(students, 0), created_at`

func (s *CatalogStore) ListModules(ctx context.Context) ([]domain.Module, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var modules []domain.Module
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, module)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

func (s *CatalogStore) GetModule(ctx context.Context, moduleID string) (domain.Module, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id=$1`, moduleID)
	module, err := scanModule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Module{}, domain.ErrModuleNotFound
	}
	if err != nil {
		return domain.Module{}, fmt.Errorf("get module: %w", err)
	}
	return module, nil
}

func (s *CatalogStore) ListLessons(ctx context.Context, moduleID string) ([]domain.Lesson, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, module_id, title, content_kind,
		COALESCE(content_url, ''), order_index, COALESCE(duration, '')
		FROM lessons WHERE module_id=$1 ORDER BY order_index`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []domain.Lesson
	for rows.Next() {
		var l domain.Lesson
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.ContentKind, &l.ContentURL, &l.OrderIndex, &l.Duration); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

func (s *CatalogStore) ListQuizQuestions(ctx context.Context, moduleID string) ([]domain.QuizQuestion, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, module_id, prompt, options, correct_answer
		FROM quiz_questions WHERE module_id=$1 ORDER BY id`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list quiz questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.QuizQuestion
	for rows.Next() {
		var q domain.QuizQuestion
		var options []byte
		if err := rows.Scan(&q.ID, &q.ModuleID, &q.Prompt, &options, &q.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("scan quiz question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quiz questions: %w", err)
	}
	return questions, nil
}

func (s *CatalogStore) CountQuizQuestions(ctx context.Context, moduleID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM quiz_questions WHERE module_id=$1`, moduleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count quiz questions: %w", err)
	}
	return count, nil
}

func scanModule(row pgx.Row) (domain.Module, error) {
	var m domain.Module
	err := row.Scan(&m.ID, &m.Title, &m.Category, &m.Level, &m.Description, &m.Premium,
		&m.ThumbnailURL, &m.LessonsCount, &m.Duration, &m.Rating, &m.Students, &m.CreatedAt)
	return m, err
}
