package telemetry

// DefaultBufferSize is the number of events kept for the active session.
const DefaultBufferSize = 50

// Buffer is a bounded, newest-first store of events for one session.
//
// Buffer is not safe for concurrent use; the dashboard controller owns it
// from its event loop goroutine.
type Buffer struct {
	events []Event
	size   int
}

// NewBuffer creates a buffer holding at most size events.
// A non-positive size uses DefaultBufferSize.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffer{
		events: make([]Event, 0, size),
		size:   size,
	}
}

// ApplySnapshot replaces the contents with events, which must already be
// newest-first. Anything beyond the capacity is dropped from the tail.
func (b *Buffer) ApplySnapshot(events []Event) {
	n := len(events)
	if n > b.size {
		n = b.size
	}
	b.events = b.events[:0]
	b.events = append(b.events, events[:n]...)
}

// ApplyIncrement prepends e and drops the oldest entries beyond capacity.
// No deduplication by ID is done: a repeated ID appears twice.
func (b *Buffer) ApplyIncrement(e Event) {
	if len(b.events) < b.size {
		b.events = append(b.events, Event{})
	}
	copy(b.events[1:], b.events[:len(b.events)-1])
	b.events[0] = e
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.events = b.events[:0]
}

// Events returns a copy of the contents, newest first.
func (b *Buffer) Events() []Event {
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Cap returns the maximum number of events retained.
func (b *Buffer) Cap() int {
	return b.size
}
