// Package simulate generates synthetic launch telemetry and posts it to the
// backend, for exercising the dashboard without a vehicle.
package simulate

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/groundctl/groundctl/internal/clock"
	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/logger"
	"github.com/groundctl/groundctl/internal/telemetry"
)

const (
	// DefaultInterval is the pause between events.
	DefaultInterval = 500 * time.Millisecond

	// GroundPressure is sea-level pressure in hPa.
	GroundPressure = 1013.25

	maxVelocity  = 300.0
	acceleration = 3.0
	minPressure  = 1.0
)

// SessionID returns the identifier for a simulation started at now.
func SessionID(now time.Time) string {
	return fmt.Sprintf("sim-%d", now.Unix())
}

// Generator produces a climbing flight profile: velocity ramps up with
// noise and levels off near 300 m/s, altitude grows quadratically, and
// pressure follows the barometric formula plus sensor noise.
type Generator struct {
	session     string
	rng         *rand.Rand
	scaleHeight float64
	elapsed     int
	velocity    float64
}

// NewGenerator creates a generator for session. The same seed yields the
// same sequence.
func NewGenerator(session string, seed int64) *Generator {
	return &Generator{
		session:     session,
		rng:         rand.New(rand.NewSource(seed)),
		scaleHeight: telemetry.DefaultScaleHeight,
	}
}

// Session returns the identifier stamped on every event.
func (g *Generator) Session() string {
	return g.session
}

// Next returns the event for the next elapsed second.
func (g *Generator) Next() telemetry.EventCreate {
	t := g.elapsed
	g.elapsed++

	g.velocity += g.uniform(1.5, 4.0)
	g.velocity = math.Min(g.velocity, maxVelocity+g.uniform(-5, 5))

	altitude := 0.5 * acceleration * float64(t*t)
	pressure := GroundPressure*math.Exp(-altitude/g.scaleHeight) + g.uniform(-0.5, 0.5)
	pressure = math.Max(pressure, minPressure)

	return telemetry.EventCreate{
		Timestamp:   fmt.Sprintf("T+%d", t),
		Identifier:  g.session,
		Velocity:    round2(g.velocity),
		AirPressure: round2(pressure),
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Poster delivers one event to the backend.
type Poster interface {
	PostEvent(ctx context.Context, event telemetry.EventCreate) error
}

// Options configures Run.
type Options struct {
	Poster    Poster
	Generator *Generator
	Interval  time.Duration
	// Count stops after this many events. Zero runs until ctx is done.
	Count int
	Clock clock.Clock
	// OnEvent is called after each successful post.
	OnEvent func(telemetry.EventCreate)
	Logger  logger.Logger
}

// Run posts one event immediately and then one per interval. It returns the
// number of events sent. Cancelling ctx is a clean stop; a failed post
// stops the run with an error.
func Run(ctx context.Context, opts Options) (int, error) {
	if opts.Poster == nil || opts.Generator == nil {
		return 0, errors.New(errors.ErrConfig, "Simulator is missing a poster or generator", "")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	ticker := opts.Clock.NewTicker(opts.Interval)
	defer ticker.Stop()

	opts.Logger.Info("simulating session %s every %s", opts.Generator.Session(), opts.Interval)

	sent := 0
	for {
		event := opts.Generator.Next()
		if err := opts.Poster.PostEvent(ctx, event); err != nil {
			if ctx.Err() != nil {
				return sent, nil
			}
			return sent, errors.WrapWithCode(err, errors.ErrFetch,
				fmt.Sprintf("Failed to post simulated event %s", event.Timestamp),
				"Check that the backend is running and --server is correct")
		}
		sent++
		if opts.OnEvent != nil {
			opts.OnEvent(event)
		}
		if opts.Count > 0 && sent >= opts.Count {
			return sent, nil
		}

		select {
		case <-ctx.Done():
			opts.Logger.Info("simulation stopped after %d events", sent)
			return sent, nil
		case <-ticker.C:
		}
	}
}
