package instrument

import (
	"fmt"
	"testing"
)

func TestRingRecorder_NewestFirst(t *testing.T) {
	r := NewRingRecorder(8)
	for i := 0; i < 3; i++ {
		r.Record(Event{Path: fmt.Sprintf("/api/rows/row%d", i)})
	}

	events := r.Recent(0)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Path != "/api/rows/row2" {
		t.Fatalf("expected newest first, got %s", events[0].Path)
	}
	if events[2].Path != "/api/rows/row0" {
		t.Fatalf("expected oldest last, got %s", events[2].Path)
	}
}

func TestRingRecorder_WrapsAtCapacity(t *testing.T) {
	r := NewRingRecorder(4)
	for i := 0; i < 10; i++ {
		r.Record(Event{Status: i})
	}

	events := r.Recent(0)
	if len(events) != 4 {
		t.Fatalf("expected capacity-bounded 4 events, got %d", len(events))
	}
	for i, e := range events {
		if want := 9 - i; e.Status != want {
			t.Fatalf("event %d: expected status %d, got %d", i, want, e.Status)
		}
	}
}

func TestRingRecorder_Limit(t *testing.T) {
	r := NewRingRecorder(8)
	for i := 0; i < 5; i++ {
		r.Record(Event{Status: i})
	}

	events := r.Recent(2)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Status != 4 || events[1].Status != 3 {
		t.Fatalf("unexpected events: %+v", events)
	}
}
