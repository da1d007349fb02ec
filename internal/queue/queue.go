package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// DeliveryQueue is a store-and-forward queue for capture events. Items are
// appended through the injected store and drained towards the sender on a
// fixed interval; an item is removed only after the sender accepted it, so
// delivery is at-least-once.
type DeliveryQueue struct {
	store         core.QueueStore
	sender        core.EventSender
	drainInterval time.Duration
	logger        *zap.Logger
	mu            sync.Mutex
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewDeliveryQueue creates a new delivery queue
func NewDeliveryQueue(
	store core.QueueStore,
	sender core.EventSender,
	drainInterval time.Duration,
	logger *zap.Logger,
) *DeliveryQueue {
	return &DeliveryQueue{
		store:         store,
		sender:        sender,
		drainInterval: drainInterval,
		logger:        logger,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Enqueue appends a payload to the queue. The payload is serialized and
// persisted before Enqueue returns.
func (q *DeliveryQueue) Enqueue(ctx context.Context, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load queue: %w", err)
	}

	items = append(items, core.QueueItem{
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	})

	if err := q.store.Save(ctx, items); err != nil {
		return fmt.Errorf("failed to save queue: %w", err)
	}
	return nil
}

// Drain attempts to deliver every queued item in order. Items the sender
// rejects stay queued in their original order for the next drain; items
// enqueued while the drain is running are preserved.
func (q *DeliveryQueue) Drain(ctx context.Context) error {
	q.mu.Lock()
	items, err := q.store.Load(ctx)
	q.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to load queue: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	delivered := make(map[int]bool, len(items))
	for i, item := range items {
		if err := q.sender.Send(ctx, item); err != nil {
			q.logger.Warn("Failed to deliver queued event",
				zap.Error(err),
				zap.Time("enqueued_at", item.EnqueuedAt))
			continue
		}
		delivered[i] = true
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	// Reload before rewriting: new items may have arrived during delivery.
	current, err := q.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload queue: %w", err)
	}

	var remaining []core.QueueItem
	for i, item := range items {
		if !delivered[i] {
			remaining = append(remaining, item)
		}
	}
	if len(current) > len(items) {
		remaining = append(remaining, current[len(items):]...)
	}

	if err := q.store.Save(ctx, remaining); err != nil {
		return fmt.Errorf("failed to save queue: %w", err)
	}

	q.logger.Debug("Drained delivery queue",
		zap.Int("delivered", len(delivered)),
		zap.Int("remaining", len(remaining)))
	return nil
}

// Start runs the periodic drain loop until Stop is called
func (q *DeliveryQueue) Start() {
	go func() {
		defer close(q.doneCh)

		ticker := time.NewTicker(q.drainInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := q.Drain(context.Background()); err != nil {
					q.logger.Error("Failed to drain delivery queue", zap.Error(err))
				}
			case <-q.stopCh:
				return
			}
		}
	}()
}

// Stop stops the drain loop after attempting one final drain
func (q *DeliveryQueue) Stop() {
	close(q.stopCh)
	<-q.doneCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := q.Drain(ctx); err != nil {
		q.logger.Error("Failed final drain of delivery queue", zap.Error(err))
	}
}
