package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"atelier-learning-service/internal/domain"
)

// CatalogStore abstracts read-only access to module, lesson, and quiz data.
// ListModules returns newest-created-first; GetModule returns
// domain.ErrModuleNotFound on zero rows.
type CatalogStore interface {
	ListModules(ctx context.Context) ([]domain.Module, error)
	GetModule(ctx context.Context, moduleID string) (domain.Module, error)
	ListLessons(ctx context.Context, moduleID string) ([]domain.Lesson, error)
	ListQuizQuestions(ctx context.Context, moduleID string) ([]domain.QuizQuestion, error)
	CountQuizQuestions(ctx context.Context, moduleID string) (int, error)
}

// ModuleDetail joins a module with its ordered lessons and quiz size.
type ModuleDetail struct {
	Module    domain.Module   `json:"module"`
	Lessons   []domain.Lesson `json:"lessons"`
	QuizCount int             `json:"quizCount"`
}

// Catalog is the read-only projection service over the catalog store.
type Catalog struct {
	store CatalogStore
}

func NewCatalog(store CatalogStore) *Catalog {
	return &Catalog{store: store}
}

// ListModules returns all modules newest-created-first. Zero rows is an empty
// slice, not an error.
func (c *Catalog) ListModules(ctx context.Context) ([]domain.Module, error) {
	modules, err := c.store.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	if modules == nil {
		modules = []domain.Module{}
	}
	return modules, nil
}

// ModuleDetail issues the module, lesson, and quiz-count reads concurrently
// and joins them. A missing module surfaces as domain.ErrModuleNotFound,
// distinct from transport errors.
func (c *Catalog) ModuleDetail(ctx context.Context, moduleID string) (ModuleDetail, error) {
	var detail ModuleDetail

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		module, err := c.store.GetModule(ctx, moduleID)
		if err != nil {
			return err
		}
		detail.Module = module
		return nil
	})
	g.Go(func() error {
		lessons, err := c.store.ListLessons(ctx, moduleID)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		detail.Lessons = lessons
		return nil
	})
	g.Go(func() error {
		count, err := c.store.CountQuizQuestions(ctx, moduleID)
		if err != nil {
			return fmt.Errorf("count quiz questions: %w", err)
		}
		detail.QuizCount = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return ModuleDetail{}, err
	}

	sort.SliceStable(detail.Lessons, func(i, j int) bool {
		return detail.Lessons[i].OrderIndex < detail.Lessons[j].OrderIndex
	})
	if detail.Lessons == nil {
		detail.Lessons = []domain.Lesson{}
	}
	return detail, nil
}

// QuizQuestions returns the module's quiz in question order.
func (c *Catalog) QuizQuestions(ctx context.Context, moduleID string) ([]domain.QuizQuestion, error) {
	questions, err := c.store.ListQuizQuestions(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list quiz questions: %w", err)
	}
	return questions, nil
}

// FilterModules applies the catalogue search and category predicates. A module
// matches the search if it is a case-insensitive substring of the title or
// description; it matches the category on exact equality, or always when no
// category is selected. The combined filter is the AND of both.
func FilterModules(modules []domain.Module, search, category string) []domain.Module {
	needle := strings.ToLower(search)
	filtered := make([]domain.Module, 0, len(modules))
	for _, m := range modules {
		matchSearch := needle == "" ||
			strings.Contains(strings.ToLower(m.Title), needle) ||
			strings.Contains(strings.ToLower(m.Description), needle)
		matchCategory := category == "" || m.Category == category
		if matchSearch && matchCategory {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
