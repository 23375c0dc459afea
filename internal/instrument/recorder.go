package instrument

import (
	"sync"
	"time"
)

// Event is one recorded gateway request.
type Event struct {
	Time       time.Time `json:"time"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	DurationMs float64   `json:"duration_ms"`
	Principal  string    `json:"principal,omitempty"`
}

// Recorder collects request events for the admin surface.
type Recorder interface {
	Record(event Event)
	Recent(n int) []Event
}

// RingRecorder keeps the most recent events in a fixed-size ring.
type RingRecorder struct {
	mu     sync.Mutex
	events []Event
	next   int
	filled bool
}

// NewRingRecorder creates a recorder holding at most capacity events.
func NewRingRecorder(capacity int) *RingRecorder {
	if capacity <= 0 {
		capacity = 256
	}
	return &RingRecorder{events: make([]Event, capacity)}
}

func (r *RingRecorder) Record(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = event
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.filled = true
	}
}

// Recent returns up to n events, newest first.
func (r *RingRecorder) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.filled {
		size = len(r.events)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.events)) % len(r.events)
		out = append(out, r.events[idx])
	}
	return out
}
