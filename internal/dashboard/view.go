package dashboard

import (
	"time"

	"github.com/groundctl/groundctl/internal/stream"
	"github.com/groundctl/groundctl/internal/telemetry"
)

// Status is the connection badge shown to the operator.
type Status string

const (
	StatusLive       Status = "LIVE"
	StatusConnecting Status = "CONNECTING"
	StatusOffline    Status = "OFFLINE"
)

// StatusFor maps a source state to its badge.
func StatusFor(s stream.State) Status {
	switch s {
	case stream.Connected:
		return StatusLive
	case stream.Connecting:
		return StatusConnecting
	default:
		return StatusOffline
	}
}

// Row is one buffered event with its derived altitude.
type Row struct {
	telemetry.Event

	Altitude    float64
	HasAltitude bool
	// New marks rows that arrived with the latest buffer change.
	New bool
}

// Stats summarizes the feed for the selected session.
type Stats struct {
	Messages   int
	P50        time.Duration
	P95        time.Duration
	Reconnects int
}

// View is an immutable snapshot of everything the dashboard renders.
type View struct {
	Rows   []Row
	Status Status
	State  stream.State

	SecondsSinceUpdate int
	HasUpdate          bool
	NewEventCount      int

	StreamError string
	FetchError  string
	// SaveError is set when the calibration could not be persisted.
	SaveError string

	Sessions []string
	Selected string

	ReferencePressure float64
	AltitudeEnabled   bool

	Stats Stats
	// Generation is the subscription the rows belong to.
	Generation uint64
	At         time.Time
}

// Latest returns the newest row, if any.
func (v View) Latest() (Row, bool) {
	if len(v.Rows) == 0 {
		return Row{}, false
	}
	return v.Rows[0], true
}
