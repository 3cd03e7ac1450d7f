package app

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"atelier-learning-service/internal/auth"
	"atelier-learning-service/internal/domain"
)

// ProgressRepository abstracts durable storage for completion records and the
// stored per-module progress rows.
type ProgressRepository interface {
	ListCompletedLessons(ctx context.Context, userID, moduleID string) ([]string, error)
	InsertCompletion(ctx context.Context, record domain.LessonProgress) error
	DeleteCompletion(ctx context.Context, userID, lessonID string) error
	ListModuleProgress(ctx context.Context, userID string) ([]domain.ModuleProgress, error)
	UpsertQuizScore(ctx context.Context, userID, moduleID string, score int) error
}

// ProgressFeed is the live change stream for completion records. Subscribe
// delivers events for one module until the returned cancel is called; cancel
// is idempotent. The feed is not pre-filtered by user.
type ProgressFeed interface {
	Publish(ctx context.Context, event domain.ProgressEvent) error
	Subscribe(ctx context.Context, moduleID string) (<-chan domain.ProgressEvent, func(), error)
}

// ProgressStore owns the completed-lesson set for one (user, module) view.
// The bulk load and the live feed both merge into the current set, so their
// relative arrival order does not affect the final state.
type ProgressStore struct {
	session     auth.Session
	moduleID    string
	lessonTotal int
	repo        ProgressRepository
	feed        ProgressFeed
	now         func() time.Time

	mu         sync.Mutex
	completed  map[string]struct{}
	closed     bool
	cancelFeed func()
	watchers   map[chan domain.ProgressSnapshot]struct{}
	lastErr    error
}

// NewProgressStore builds a store for one module view. lessonTotal is the
// module's lesson count used for percentage derivation; zero disables it.
func NewProgressStore(session auth.Session, moduleID string, lessonTotal int, repo ProgressRepository, feed ProgressFeed) *ProgressStore {
	return &ProgressStore{
		session:     session,
		moduleID:    moduleID,
		lessonTotal: lessonTotal,
		repo:        repo,
		feed:        feed,
		now:         time.Now,
		completed:   make(map[string]struct{}),
		watchers:    make(map[chan domain.ProgressSnapshot]struct{}),
	}
}

// Start opens the live-feed subscription. Events for other users are dropped
// client-side.
func (p *ProgressStore) Start(ctx context.Context) error {
	if p.feed == nil {
		return nil
	}
	events, cancel, err := p.feed.Subscribe(ctx, p.moduleID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		cancel()
		return domain.ErrStoreClosed
	}
	p.cancelFeed = cancel
	p.mu.Unlock()

	go p.consume(events)
	return nil
}

// Load reads the completed-lesson ids in bulk and merges them into the
// current set. Reads fail open: on error the set is left as-is (empty on a
// fresh store) and the error is reported, never fatal. A load that resolves
// after Close is discarded.
func (p *ProgressStore) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.ErrStoreClosed
	}
	p.mu.Unlock()

	ids, err := p.repo.ListCompletedLessons(ctx, p.session.UserID, p.moduleID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return domain.ErrStoreClosed
	}
	if err != nil {
		p.lastErr = err
		return err
	}
	p.lastErr = nil
	for _, id := range ids {
		p.completed[id] = struct{}{}
	}
	p.broadcastLocked()
	return nil
}

// Toggle flips a lesson's completion. Local state mutates first (optimistic);
// the remote write follows. On remote failure the local state is NOT rolled
// back; the error is returned for the caller to surface, and a later load or
// feed event reconciles the drift.
func (p *ProgressStore) Toggle(ctx context.Context, lessonID string) (bool, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false, domain.ErrStoreClosed
	}
	_, was := p.completed[lessonID]
	if was {
		delete(p.completed, lessonID)
	} else {
		p.completed[lessonID] = struct{}{}
	}
	p.broadcastLocked()
	p.mu.Unlock()

	record := domain.LessonProgress{
		UserID:      p.session.UserID,
		LessonID:    lessonID,
		ModuleID:    p.moduleID,
		CompletedAt: p.now(),
	}

	var err error
	eventType := domain.FeedInsert
	if was {
		eventType = domain.FeedDelete
		err = p.repo.DeleteCompletion(ctx, p.session.UserID, lessonID)
	} else {
		err = p.repo.InsertCompletion(ctx, record)
	}
	if err != nil {
		return !was, err
	}

	if p.feed != nil {
		if perr := p.feed.Publish(ctx, domain.ProgressEvent{Type: eventType, Record: record}); perr != nil {
			log.Printf("progress feed publish: %v", perr)
		}
	}
	return !was, nil
}

// Completed returns a sorted snapshot of the completed lesson ids.
func (p *ProgressStore) Completed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completedLocked()
}

// Has reports whether the lesson is currently marked complete.
func (p *ProgressStore) Has(lessonID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.completed[lessonID]
	return ok
}

// Percent derives the completion percentage from the configured lesson total.
func (p *ProgressStore) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.CompletionPercent(len(p.completed), p.lessonTotal)
}

// Err returns the last bulk-load error, if any.
func (p *ProgressStore) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Watch returns a channel of progress snapshots, starting with the current
// state. The caller must invoke the returned cancel function to avoid leaks.
func (p *ProgressStore) Watch() (<-chan domain.ProgressSnapshot, func()) {
	ch := make(chan domain.ProgressSnapshot, 8)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	p.watchers[ch] = struct{}{}
	initial := p.snapshotLocked()
	p.mu.Unlock()

	ch <- initial

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.watchers[ch]; ok {
			delete(p.watchers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

// Close releases the feed subscription and all watchers. Idempotent; a load
// resolving after Close does not write into state.
func (p *ProgressStore) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	cancel := p.cancelFeed
	p.cancelFeed = nil
	for ch := range p.watchers {
		delete(p.watchers, ch)
		close(ch)
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (p *ProgressStore) consume(events <-chan domain.ProgressEvent) {
	for event := range events {
		if event.Record.UserID != p.session.UserID {
			continue
		}
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		switch event.Type {
		case domain.FeedInsert:
			if _, ok := p.completed[event.Record.LessonID]; !ok {
				p.completed[event.Record.LessonID] = struct{}{}
				p.broadcastLocked()
			}
		case domain.FeedDelete:
			// Deleting an id not in the set is a no-op, not an error.
			if _, ok := p.completed[event.Record.LessonID]; ok {
				delete(p.completed, event.Record.LessonID)
				p.broadcastLocked()
			}
		}
		p.mu.Unlock()
	}
}

func (p *ProgressStore) completedLocked() []string {
	ids := make([]string, 0, len(p.completed))
	for id := range p.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *ProgressStore) snapshotLocked() domain.ProgressSnapshot {
	ids := p.completedLocked()
	return domain.ProgressSnapshot{
		ModuleID:  p.moduleID,
		Completed: ids,
		Percent:   domain.CompletionPercent(len(ids), p.lessonTotal),
		UpdatedAt: p.now(),
	}
}

func (p *ProgressStore) broadcastLocked() {
	snapshot := p.snapshotLocked()
	for ch := range p.watchers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot so a slow watcher never blocks mutation.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
