package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"atelier-learning-service/internal/domain"
)

// ProgressFeed carries lesson-progress change events over Redis pub/sub, one
// channel per module (progress:module:{id}). Payloads are the JSON-encoded
// domain.ProgressEvent. Events are fire-and-forget: there is no replay, which
// matches the feed contract — the bulk load supplies history, the feed only
// has to cover changes while a view is open.
type ProgressFeed struct {
	client *redis.Client
}

func NewProgressFeed(client *redis.Client) *ProgressFeed {
	return &ProgressFeed{client: client}
}

func (f *ProgressFeed) Publish(ctx context.Context, event domain.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel(event.Record.ModuleID), payload).Err()
}

// Subscribe opens a pub/sub subscription for the module. The returned cancel
// closes the subscription and, transitively, the event channel; it is safe to
// call more than once.
func (f *ProgressFeed) Subscribe(ctx context.Context, moduleID string) (<-chan domain.ProgressEvent, func(), error) {
	sub := f.client.Subscribe(ctx, f.channel(moduleID))
	// Force the SUBSCRIBE round-trip so a broken connection fails here, not
	// silently in the pump goroutine.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	events := make(chan domain.ProgressEvent, 16)
	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			var event domain.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("progress feed: drop malformed event: %v", err)
				continue
			}
			events <- event
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = sub.Close()
		})
	}
	return events, cancel, nil
}

func (f *ProgressFeed) channel(moduleID string) string {
	return "progress:module:" + moduleID
}
