package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/classbridge/lms-service/internal/viewmodel"
)

// SnapshotLoader reads a fresh, internally consistent snapshot of every
// collection the view-model layer derives from.
type SnapshotLoader func(ctx context.Context) (*viewmodel.Snapshot, error)

// EventSource is the stream of domain mutation notices the hub reacts to.
// The in-process watermill channel satisfies this.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// Hub turns domain events into whole-snapshot pushes. Every mutation notice
// triggers one reload; subscribers always receive a complete snapshot, never
// a patch, so a consumer that misses an update converges on the next one.
type Hub struct {
	loader SnapshotLoader
	source EventSource
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	last   *viewmodel.Snapshot
}

// Subscription is a cancellable handle on the hub's snapshot stream.
type Subscription struct {
	id   uint64
	ch   chan *viewmodel.Snapshot
	hub  *Hub
	once sync.Once
}

// Snapshots returns the channel snapshots are delivered on. The channel is
// closed after Unsubscribe.
func (s *Subscription) Snapshots() <-chan *viewmodel.Snapshot {
	return s.ch
}

// Unsubscribe detaches the handle. Safe to call more than once; no snapshot
// is delivered after it returns.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s.id)
		close(s.ch)
	})
}

func NewHub(loader SnapshotLoader, source EventSource, logger *slog.Logger) *Hub {
	return &Hub{
		loader: loader,
		source: source,
		logger: logger,
		subs:   make(map[uint64]*Subscription),
	}
}

// Subscribe registers a new listener. If the hub has already loaded a
// snapshot, the listener receives it immediately so it never starts blank.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id: h.nextID,
		// Buffer of one plus coalescing in deliver: a slow consumer sees
		// the newest snapshot, not a backlog of stale ones.
		ch:  make(chan *viewmodel.Snapshot, 1),
		hub: h,
	}
	h.subs[sub.id] = sub

	if h.last != nil {
		sub.ch <- h.last
	}

	return sub
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// SubscriberCount reports how many handles are currently attached.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Run consumes the event stream until ctx is cancelled. It performs an
// initial load so early subscribers get data before the first mutation.
func (h *Hub) Run(ctx context.Context) error {
	if err := h.refresh(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Initial snapshot load failed", "error", err)
	}

	messages, err := h.source.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := h.refresh(ctx); err != nil {
				h.logger.ErrorContext(ctx, "Snapshot reload failed",
					"error", err,
					"event_type", msg.Metadata.Get("event_type"))
				// Nack so the transport can redeliver once the store recovers
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}

func (h *Hub) refresh(ctx context.Context) error {
	snap, err := h.loader(ctx)
	if err != nil {
		return err
	}
	h.broadcast(snap)
	return nil
}

func (h *Hub) broadcast(snap *viewmodel.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = snap
	for _, sub := range h.subs {
		h.deliver(sub, snap)
	}
}

// deliver replaces any undelivered snapshot with the newest one.
func (h *Hub) deliver(sub *Subscription, snap *viewmodel.Snapshot) {
	for {
		select {
		case sub.ch <- snap:
			return
		default:
			select {
			case <-sub.ch:
				// Dropped a stale snapshot the consumer never read.
			default:
			}
		}
	}
}
