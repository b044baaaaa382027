package services_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/services"
)

func TestProgressHubFanOut(t *testing.T) {
	hub := services.NewProgressHub()
	runID := uuid.New()

	first, cancelFirst := hub.Subscribe(runID)
	second, cancelSecond := hub.Subscribe(runID)
	defer cancelFirst()
	defer cancelSecond()

	hub.Publish(runID, services.ProgressEvent{Type: "progress", Processed: 1, Total: 3})

	for name, ch := range map[string]<-chan services.ProgressEvent{"first": first, "second": second} {
		select {
		case event := <-ch:
			if event.Processed != 1 || event.Total != 3 {
				t.Errorf("%s observer: unexpected event %+v", name, event)
			}
		default:
			t.Errorf("%s observer received nothing", name)
		}
	}
}

func TestProgressHubCloseEndsStreams(t *testing.T) {
	hub := services.NewProgressHub()
	runID := uuid.New()

	events, cancel := hub.Subscribe(runID)
	defer cancel()

	hub.Publish(runID, services.ProgressEvent{Type: "complete"})
	hub.Close(runID)

	var collected []services.ProgressEvent
	for event := range events {
		collected = append(collected, event)
	}
	if len(collected) != 1 || collected[0].Type != "complete" {
		t.Errorf("Expected buffered terminal event then close, got %+v", collected)
	}

	// Publishing after close is a no-op, not a panic
	hub.Publish(runID, services.ProgressEvent{Type: "progress"})
}

func TestProgressHubCancelDetachesObserver(t *testing.T) {
	hub := services.NewProgressHub()
	runID := uuid.New()

	events, cancel := hub.Subscribe(runID)
	cancel()

	if _, open := <-events; open {
		t.Error("Cancelled observer channel should be closed")
	}

	// Cancel twice must be safe
	cancel()
	hub.Close(runID)
}

func TestProgressHubIsolatesRuns(t *testing.T) {
	hub := services.NewProgressHub()
	runA := uuid.New()
	runB := uuid.New()

	eventsA, cancelA := hub.Subscribe(runA)
	defer cancelA()

	hub.Publish(runB, services.ProgressEvent{Type: "progress"})

	select {
	case event := <-eventsA:
		t.Errorf("Observer of run A received run B's event: %+v", event)
	default:
	}
}

func TestProgressHubDropsWhenObserverStalls(t *testing.T) {
	hub := services.NewProgressHub()
	runID := uuid.New()

	_, cancel := hub.Subscribe(runID)
	defer cancel()

	// Way past the buffer size; the publisher must not block
	for i := 0; i < 100; i++ {
		hub.Publish(runID, services.ProgressEvent{Type: "progress", Processed: i})
	}
}
