// Package telemetry holds the event model shared by the stream client and the
// dashboard: the wire shape of a telemetry event, the bounded newest-first
// event buffer, and altitude derivation from barometric pressure.
package telemetry

import "time"

// Event is one telemetry sample as delivered by the backend.
//
// Timestamp is the source's own label (e.g. "T+12"). It is displayed as-is
// and never parsed or used for ordering; arrival order is authoritative.
type Event struct {
	ID           int64     `json:"id"`
	Identifier   string    `json:"identifier"`
	Timestamp    string    `json:"timestamp"`
	Velocity     float64   `json:"velocity"`
	AirPressure  float64   `json:"air_pressure"`
	SaveDatetime time.Time `json:"save_datetime"`
}

// EventCreate is the body accepted by POST /api/events/.
type EventCreate struct {
	Timestamp   string  `json:"timestamp"`
	Identifier  string  `json:"identifier"`
	Velocity    float64 `json:"velocity"`
	AirPressure float64 `json:"air_pressure"`
}
