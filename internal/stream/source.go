// Package stream delivers live telemetry for one session at a time.
//
// Two sources implement the same contract: Manager keeps a WebSocket
// subscription alive with a fixed-delay reconnect, and Poller fetches the
// latest events on a ticker. Every Update carries the generation returned by
// Subscribe; consumers discard updates whose generation is not current, so
// nothing from a torn-down subscription can leak into the next one.
package stream

import (
	"time"

	"github.com/groundctl/groundctl/internal/telemetry"
)

// UpdateKind says what an Update carries.
type UpdateKind int

const (
	// UpdateState reports a state transition (State, Err).
	UpdateState UpdateKind = iota
	// UpdateSnapshot replaces the buffer (Events).
	UpdateSnapshot
	// UpdateEvent prepends one event (Event).
	UpdateEvent
)

// String returns a short name for logs and metrics labels.
func (k UpdateKind) String() string {
	switch k {
	case UpdateState:
		return "state"
	case UpdateSnapshot:
		return "snapshot"
	case UpdateEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Update is one notification from a source.
type Update struct {
	Generation uint64
	Identifier string
	Kind       UpdateKind

	// State transition fields.
	State State
	Err   error
	// Reconnect is set on the Connecting transition that follows a failure.
	Reconnect bool

	Events []telemetry.Event
	Event  telemetry.Event

	// At is when the source observed the update.
	At time.Time
}

// Sink receives updates. It is called from the source's goroutines and may
// block; it must not call back into the source.
type Sink func(Update)

// Source is a session-scoped live event feed.
type Source interface {
	// Subscribe tears down any current subscription, starts a new one for
	// identifier and returns its generation.
	Subscribe(identifier string) uint64
	// Teardown stops the current subscription. Later callbacks from it are
	// no-ops.
	Teardown()
	// Close tears down for shutdown. The source cannot be reused.
	Close()

	State() State
	LastError() error
	Generation() uint64
	Identifier() string
}
