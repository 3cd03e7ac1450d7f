package memory

import (
	"context"
	"sync"

	"atelier-learning-service/internal/domain"
)

// FeedBus is an in-process implementation of app.ProgressFeed: published
// events fan out to every subscriber of the event's module.
type FeedBus struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.ProgressEvent]struct{}
}

func NewFeedBus() *FeedBus {
	return &FeedBus{subscribers: make(map[string]map[chan domain.ProgressEvent]struct{})}
}

func (b *FeedBus) Publish(_ context.Context, event domain.ProgressEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[event.Record.ModuleID] {
		select {
		case ch <- event:
		default:
			// Drop the oldest event so a slow subscriber never blocks publish.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
	return nil
}

// Subscribe registers for the module's events. The returned cancel releases
// the subscription and closes the channel; calling it twice is a no-op.
func (b *FeedBus) Subscribe(_ context.Context, moduleID string) (<-chan domain.ProgressEvent, func(), error) {
	ch := make(chan domain.ProgressEvent, 16)

	b.mu.Lock()
	if b.subscribers[moduleID] == nil {
		b.subscribers[moduleID] = make(map[chan domain.ProgressEvent]struct{})
	}
	b.subscribers[moduleID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if subs, ok := b.subscribers[moduleID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(b.subscribers, moduleID)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel, nil
}

// SubscriberCount reports the module's live subscriptions, for tests.
func (b *FeedBus) SubscriberCount(moduleID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[moduleID])
}
