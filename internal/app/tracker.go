package app

import (
	"context"
	"sync"

	"atelier-learning-service/internal/auth"
)

// LessonTotalFunc reports a module's lesson count for percentage derivation.
type LessonTotalFunc func(ctx context.Context, moduleID string) int

// Tracker owns the ProgressStore for the module currently being viewed.
// Switching modules releases the previous store's subscription before the new
// one is opened, so stale in-flight loads cannot write into the new view and
// feed subscriptions never accumulate across navigations.
type Tracker struct {
	session auth.Session
	repo    ProgressRepository
	feed    ProgressFeed
	totals  LessonTotalFunc

	mu      sync.Mutex
	current *ProgressStore
}

func NewTracker(session auth.Session, repo ProgressRepository, feed ProgressFeed, totals LessonTotalFunc) *Tracker {
	return &Tracker{session: session, repo: repo, feed: feed, totals: totals}
}

// SetModule closes the previous module's store, opens a store for moduleID,
// and kicks off its bulk load in the background.
func (t *Tracker) SetModule(ctx context.Context, moduleID string) (*ProgressStore, error) {
	total := 0
	if t.totals != nil {
		total = t.totals(ctx, moduleID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil {
		t.current.Close()
		t.current = nil
	}

	store := NewProgressStore(t.session, moduleID, total, t.repo, t.feed)
	if err := store.Start(ctx); err != nil {
		return nil, err
	}
	t.current = store

	go func() {
		// Fail-open: a load error leaves the set empty; the store records it.
		_ = store.Load(ctx)
	}()
	return store, nil
}

// Current returns the store for the active module view, or nil.
func (t *Tracker) Current() *ProgressStore {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Close tears down the active view.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil {
		t.current.Close()
		t.current = nil
	}
}
