package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/groundctl/groundctl/internal/logger"
	"github.com/groundctl/groundctl/internal/simulate"
	"github.com/groundctl/groundctl/internal/telemetry"
	"github.com/groundctl/groundctl/internal/ui"
)

// minSimulateInterval keeps the simulator from flooding the backend.
const minSimulateInterval = 10 * time.Millisecond

type simulateOptions struct {
	Session  string
	Interval time.Duration
	Count    int
	Seed     int64
	Server   string
	Quiet    bool
}

// runSimulate posts synthetic events until ctx is done or Count is reached.
func runSimulate(ctx context.Context, out io.Writer, poster simulate.Poster, log logger.Logger, opts simulateOptions) (int, error) {
	if opts.Session == "" {
		opts.Session = simulate.SessionID(time.Now())
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	if !opts.Quiet {
		ui.PrintHeader(out, ui.HeaderInfo{Title: "groundctl simulate", Server: opts.Server, Session: opts.Session})
	}

	sent, err := simulate.Run(ctx, simulate.Options{
		Poster:    poster,
		Generator: simulate.NewGenerator(opts.Session, opts.Seed),
		Interval:  opts.Interval,
		Count:     opts.Count,
		Logger:    log,
		OnEvent: func(e telemetry.EventCreate) {
			if opts.Quiet {
				return
			}
			fmt.Fprintf(out, "%s %-8s velocity %8.2f  pressure %8.2f\n",
				ui.SymbolComplete, e.Timestamp, e.Velocity, e.AirPressure)
		},
	})
	if !opts.Quiet {
		fmt.Fprintf(out, "Sent %d events to %s\n", sent, opts.Session)
	}
	return sent, err
}
