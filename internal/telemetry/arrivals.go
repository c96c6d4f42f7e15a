package telemetry

import (
	"time"

	"github.com/influxdata/tdigest"
)

// ArrivalStats tracks the gaps between consecutive stream messages so the
// operator can see whether the feed is arriving at its usual cadence.
// Quantiles come from a t-digest, which stays small over long sessions.
type ArrivalStats struct {
	digest   *tdigest.TDigest
	last     time.Time
	messages int
}

// ArrivalSummary is a point-in-time view of ArrivalStats.
type ArrivalSummary struct {
	Messages int
	P50      time.Duration
	P95      time.Duration
}

// NewArrivalStats creates an empty tracker.
func NewArrivalStats() *ArrivalStats {
	return &ArrivalStats{digest: tdigest.NewWithCompression(100)}
}

// Observe records a message arriving at t.
func (s *ArrivalStats) Observe(t time.Time) {
	if !s.last.IsZero() {
		gap := t.Sub(s.last)
		if gap >= 0 {
			s.digest.Add(float64(gap.Nanoseconds()), 1)
		}
	}
	s.last = t
	s.messages++
}

// Reset discards all observations, e.g. on a session switch.
func (s *ArrivalStats) Reset() {
	s.digest = tdigest.NewWithCompression(100)
	s.last = time.Time{}
	s.messages = 0
}

// Summary returns the message count and gap quantiles. Quantiles are zero
// until at least two messages have arrived.
func (s *ArrivalStats) Summary() ArrivalSummary {
	sum := ArrivalSummary{Messages: s.messages}
	if s.messages < 2 {
		return sum
	}
	sum.P50 = time.Duration(s.digest.Quantile(0.50))
	sum.P95 = time.Duration(s.digest.Quantile(0.95))
	return sum
}
