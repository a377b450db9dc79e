package realtime

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/classbridge/lms-service/internal/events"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/viewmodel"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// countingLoader returns a snapshot whose course count reflects how many
// loads have happened, so tests can tell reloads apart.
func countingLoader(loads *atomic.Int32) SnapshotLoader {
	return func(ctx context.Context) (*viewmodel.Snapshot, error) {
		n := loads.Add(1)
		snap := &viewmodel.Snapshot{}
		for i := int32(0); i < n; i++ {
			snap.Courses = append(snap.Courses, models.Course{ID: uint(i + 1)})
		}
		return snap, nil
	}
}

func waitForSnapshot(t *testing.T, ch <-chan *viewmodel.Snapshot) *viewmodel.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("snapshot channel closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestHub_DeliversSnapshotOnEvent(t *testing.T) {
	var loads atomic.Int32
	source := events.NewGoChannelEventPublisher(testLogger())
	defer source.Close()

	hub := NewHub(countingLoader(&loads), source, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Run(ctx) }()

	sub := hub.Subscribe()
	defer sub.Unsubscribe()

	// Initial load arrives without any event.
	first := waitForSnapshot(t, sub.Snapshots())
	if len(first.Courses) == 0 {
		t.Fatal("expected initial snapshot to carry data")
	}

	if err := source.Publish(ctx, events.Event{Type: events.CourseCreated}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	second := waitForSnapshot(t, sub.Snapshots())
	if len(second.Courses) <= len(first.Courses) {
		t.Errorf("expected reloaded snapshot, got %d courses after %d",
			len(second.Courses), len(first.Courses))
	}
}

func TestHub_LateSubscriberGetsLastSnapshot(t *testing.T) {
	var loads atomic.Int32
	source := events.NewGoChannelEventPublisher(testLogger())
	defer source.Close()

	hub := NewHub(countingLoader(&loads), source, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Run(ctx) }()

	// Wait for the initial load to complete.
	deadline := time.Now().Add(2 * time.Second)
	for loads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	sub := hub.Subscribe()
	defer sub.Unsubscribe()

	snap := waitForSnapshot(t, sub.Snapshots())
	if snap == nil || len(snap.Courses) == 0 {
		t.Error("late subscriber should receive the last snapshot immediately")
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	var loads atomic.Int32
	source := events.NewGoChannelEventPublisher(testLogger())
	defer source.Close()

	hub := NewHub(countingLoader(&loads), source, testLogger())

	sub := hub.Subscribe()
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}

	sub.Unsubscribe()
	if hub.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe, got %d", hub.SubscriberCount())
	}

	// Channel must be closed so range loops over it terminate.
	if _, ok := <-sub.Snapshots(); ok {
		t.Error("expected closed channel after unsubscribe")
	}

	// Unsubscribe is idempotent.
	sub.Unsubscribe()
}

func TestHub_SlowConsumerSeesNewestSnapshot(t *testing.T) {
	var loads atomic.Int32
	loader := countingLoader(&loads)
	source := events.NewGoChannelEventPublisher(testLogger())
	defer source.Close()

	hub := NewHub(loader, source, testLogger())
	sub := hub.Subscribe()
	defer sub.Unsubscribe()

	ctx := context.Background()

	// Broadcast three snapshots without the consumer reading any.
	for i := 0; i < 3; i++ {
		snap, err := loader(ctx)
		if err != nil {
			t.Fatalf("loader failed: %v", err)
		}
		hub.broadcast(snap)
	}

	// The single buffered slot must hold the newest snapshot.
	snap := waitForSnapshot(t, sub.Snapshots())
	if len(snap.Courses) != 3 {
		t.Errorf("expected newest snapshot with 3 courses, got %d", len(snap.Courses))
	}
}
