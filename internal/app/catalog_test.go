package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"atelier-learning-service/internal/app"
	"atelier-learning-service/internal/domain"
	"atelier-learning-service/internal/infra/memory"
)

func TestListModulesNewestFirstNoDuplicates(t *testing.T) {
	catalog := app.NewCatalog(memory.NewCatalogStore(testModules(), nil, nil))

	modules, err := catalog.ListModules(context.Background())
	if err != nil {
		t.Fatalf("list modules: %v", err)
	}
	if len(modules) != 3 {
		t.Fatalf("expected 3 modules, got %d", len(modules))
	}
	seen := make(map[string]bool)
	for i, m := range modules {
		if seen[m.ID] {
			t.Fatalf("duplicate module id %s", m.ID)
		}
		seen[m.ID] = true
		if i > 0 && m.CreatedAt.After(modules[i-1].CreatedAt) {
			t.Fatalf("modules not in created-descending order")
		}
	}
}

func TestListModulesEmptyIsNotAnError(t *testing.T) {
	catalog := app.NewCatalog(memory.NewCatalogStore(nil, nil, nil))

	modules, err := catalog.ListModules(context.Background())
	if err != nil {
		t.Fatalf("expected empty list, got error %v", err)
	}
	if modules == nil || len(modules) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", modules)
	}
}

func TestListModulesClearsOnTransportError(t *testing.T) {
	catalog := app.NewCatalog(&brokenCatalogStore{err: errors.New("backend down")})

	modules, err := catalog.ListModules(context.Background())
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if modules != nil {
		t.Fatalf("expected cleared result, got %v", modules)
	}
}

func TestModuleDetailJoinsAndSortsLessons(t *testing.T) {
	lessons := []domain.Lesson{
		{ID: "l3", ModuleID: "m1", Title: "Third", OrderIndex: 3},
		{ID: "l1", ModuleID: "m1", Title: "First", OrderIndex: 1},
		{ID: "l2", ModuleID: "m1", Title: "Second", OrderIndex: 2},
	}
	questions := []domain.QuizQuestion{
		{ID: "q1", ModuleID: "m1", Prompt: "?", Options: []string{"a", "b"}, CorrectAnswer: 0},
	}
	catalog := app.NewCatalog(memory.NewCatalogStore(testModules(), lessons, questions))

	detail, err := catalog.ModuleDetail(context.Background(), "m1")
	if err != nil {
		t.Fatalf("module detail: %v", err)
	}
	if detail.Module.ID != "m1" {
		t.Fatalf("expected module m1, got %s", detail.Module.ID)
	}
	for i, want := range []string{"l1", "l2", "l3"} {
		if detail.Lessons[i].ID != want {
			t.Fatalf("lessons out of order: %v", detail.Lessons)
		}
	}
	if detail.QuizCount != 1 {
		t.Fatalf("expected quiz count 1, got %d", detail.QuizCount)
	}
}

func TestModuleDetailNotFoundIsDistinctFromTransportError(t *testing.T) {
	catalog := app.NewCatalog(memory.NewCatalogStore(testModules(), nil, nil))

	_, err := catalog.ModuleDetail(context.Background(), "missing")
	if !errors.Is(err, domain.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}

	broken := app.NewCatalog(&brokenCatalogStore{err: errors.New("backend down")})
	_, err = broken.ModuleDetail(context.Background(), "m1")
	if errors.Is(err, domain.ErrModuleNotFound) {
		t.Fatalf("transport error must not read as not-found")
	}
	if err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestFilterModulesPredicates(t *testing.T) {
	modules := testModules()

	bySearch := app.FilterModules(modules, "PLUMB", "")
	if len(bySearch) != 1 || bySearch[0].ID != "m1" {
		t.Fatalf("case-insensitive title search failed: %v", bySearch)
	}

	byDescription := app.FilterModules(modules, "welding torch", "")
	if len(byDescription) != 1 || byDescription[0].ID != "m3" {
		t.Fatalf("description search failed: %v", byDescription)
	}

	byCategory := app.FilterModules(modules, "", "Mechanics")
	if len(byCategory) != 2 {
		t.Fatalf("category filter failed: %v", byCategory)
	}

	combined := app.FilterModules(modules, "auto", "Mechanics")
	if len(combined) != 1 || combined[0].ID != "m2" {
		t.Fatalf("combined filter must AND both predicates: %v", combined)
	}

	if got := app.FilterModules(modules, "", ""); len(got) != len(modules) {
		t.Fatalf("empty filter must match everything")
	}
}

func TestFilterModulesIsCommutative(t *testing.T) {
	modules := testModules()
	searchThenCategory := app.FilterModules(app.FilterModules(modules, "a", ""), "", "Mechanics")
	categoryThenSearch := app.FilterModules(app.FilterModules(modules, "", "Mechanics"), "a", "")

	if len(searchThenCategory) != len(categoryThenSearch) {
		t.Fatalf("filter order changed the result: %v vs %v", searchThenCategory, categoryThenSearch)
	}
	for i := range searchThenCategory {
		if searchThenCategory[i].ID != categoryThenSearch[i].ID {
			t.Fatalf("filter order changed the result: %v vs %v", searchThenCategory, categoryThenSearch)
		}
	}
}

func testModules() []domain.Module {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Module{
		{ID: "m1", Title: "Plumbing Fundamentals", Category: "Plumbing", Description: "Pipes and traps", CreatedAt: base},
		{ID: "m2", Title: "Advanced Auto Mechanics", Category: "Mechanics", Description: "Engine diagnostics", CreatedAt: base.Add(time.Hour)},
		{ID: "m3", Title: "Industrial Welding", Category: "Mechanics", Description: "Using a welding torch safely", CreatedAt: base.Add(2 * time.Hour)},
	}
}

type brokenCatalogStore struct {
	err error
}

func (b *brokenCatalogStore) ListModules(context.Context) ([]domain.Module, error) {
	return nil, b.err
}
func (b *brokenCatalogStore) GetModule(context.Context, string) (domain.Module, error) {
	return domain.Module{}, b.err
}
func (b *brokenCatalogStore) ListLessons(context.Context, string) ([]domain.Lesson, error) {
	return nil, b.err
}
func (b *brokenCatalogStore) ListQuizQuestions(context.Context, string) ([]domain.QuizQuestion, error) {
	return nil, b.err
}
func (b *brokenCatalogStore) CountQuizQuestions(context.Context, string) (int, error) {
	return 0, b.err
}
