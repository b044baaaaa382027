// services/progress_hub.go
package services

import (
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

// ProgressHub fans run progress events out to any number of observers.
// The run worker publishes; HTTP streams (and tests) subscribe. Slow
// observers lose events rather than stalling the run.
type ProgressHub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan ProgressEvent]bool
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subs: make(map[uuid.UUID]map[chan ProgressEvent]bool),
	}
}

// Subscribe registers an observer for a run. The returned cancel func
// detaches the observer; its channel closes when the run hub closes or
// the observer cancels, whichever comes first.
func (h *ProgressHub) Subscribe(runID uuid.UUID) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, subscriberBuffer)

	h.mu.Lock()
	if h.subs[runID] == nil {
		h.subs[runID] = make(map[chan ProgressEvent]bool)
	}
	h.subs[runID][ch] = true
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[runID]; ok {
			if set[ch] {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, runID)
			}
		}
	}
	return ch, cancel
}

// Publish delivers an event to every current observer of the run. Full
// observer buffers are skipped so a stuck reader cannot block the worker.
func (h *ProgressHub) Publish(runID uuid.UUID, event ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[runID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close ends the stream for a run: every observer channel is closed and
// the run's entry is dropped. Called once, after the terminal event.
func (h *ProgressHub) Close(runID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[runID] {
		close(ch)
	}
	delete(h.subs, runID)
}
