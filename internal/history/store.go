// Package history keeps a bounded window of recently validated events per
// sensor identity for the alert evaluator.
package history

import "github.com/udite/city-telemetry/internal/event"

// Capacity is the fixed window size per sensor identity.
const Capacity = 20

// Store owns the identity -> window mapping. Windows are created lazily on
// the first validated event for a new identity and live for the process
// lifetime.
//
// The Store is not safe for concurrent use: the pipeline delivers events from
// a single consumer loop, so Record is never invoked concurrently.
type Store struct {
	capacity int
	windows  map[string][]event.Event
}

// NewStore creates an empty store with the default window capacity.
func NewStore() *Store {
	return &Store{
		capacity: Capacity,
		windows:  make(map[string][]event.Event),
	}
}

// Record appends the event to the identity's window, evicting the oldest
// entry when the window is full, and returns a snapshot of the window in
// arrival order. The snapshot is the caller's to keep.
func (s *Store) Record(identity string, evt event.Event) []event.Event {
	w := s.windows[identity]
	if len(w) >= s.capacity {
		copy(w, w[1:])
		w = w[:len(w)-1]
	}
	w = append(w, evt)
	s.windows[identity] = w

	snapshot := make([]event.Event, len(w))
	copy(snapshot, w)
	return snapshot
}

// Window returns a snapshot of the identity's current window, oldest first.
func (s *Store) Window(identity string) []event.Event {
	w := s.windows[identity]
	snapshot := make([]event.Event, len(w))
	copy(snapshot, w)
	return snapshot
}

// Len returns the number of entries in the identity's window.
func (s *Store) Len(identity string) int {
	return len(s.windows[identity])
}

// Sensors returns the number of distinct identities seen so far.
func (s *Store) Sensors() int {
	return len(s.windows)
}
