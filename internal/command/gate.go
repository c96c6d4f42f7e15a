// Package command guards operator commands that act on the vehicle.
//
// Gate implements a two-step launch: the operator arms the command, then
// confirms it. Exactly one request goes out per confirmation and nothing
// is retried.
package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/groundctl/groundctl/internal/api"
	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/logger"
	"github.com/groundctl/groundctl/internal/metrics"
)

// DefaultTimeout bounds a launch request.
const DefaultTimeout = 15 * time.Second

// Phase is the gate's position in the launch sequence.
type Phase int

const (
	Idle Phase = iota
	AwaitingConfirmation
	InFlight
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingConfirmation:
		return "awaiting confirmation"
	case InFlight:
		return "in flight"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy is returned while a launch request is outstanding.
	ErrBusy = errors.New(errors.ErrCommand,
		"A launch is already in flight",
		"Wait for the current launch to finish")

	// ErrNotArmed is returned by Confirm without a prior RequestConfirmation.
	ErrNotArmed = errors.New(errors.ErrCommand,
		"Launch was not armed",
		"Request confirmation before confirming")

	// ErrCancelled is returned by Launch when the operator declines.
	ErrCancelled = errors.New(errors.ErrCommand,
		"Launch cancelled",
		"")
)

// Launcher sends the launch command.
type Launcher interface {
	Launch(ctx context.Context) (api.LaunchResponse, error)
}

// Result is the outcome of one launch. A transport failure is reported as
// StatusCode 0 with the error text as Message.
type Result struct {
	StatusCode int
	Message    string
	At         time.Time
}

// OK reports whether the launch pad accepted the command.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// String renders the result for the operator.
func (r Result) String() string {
	msg := r.Message
	if msg == "" {
		msg = "OK"
	}
	return fmt.Sprintf("Status: %d — %s", r.StatusCode, msg)
}

// Options configures a Gate.
type Options struct {
	Launcher Launcher
	Timeout  time.Duration
	Metrics  *metrics.Collector
	Logger   logger.Logger
	// Now is used to stamp results. Defaults to time.Now.
	Now func() time.Time
}

// Gate serializes launch commands.
type Gate struct {
	launcher Launcher
	timeout  time.Duration
	metrics  *metrics.Collector
	log      logger.Logger
	now      func() time.Time

	mu    sync.Mutex
	phase Phase
	last  *Result
}

// NewGate creates an idle gate.
func NewGate(opts Options) *Gate {
	g := &Gate{
		launcher: opts.Launcher,
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.log == nil {
		g.log = logger.Noop()
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Phase returns the current phase.
func (g *Gate) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// LastResult returns the most recent result, if any.
func (g *Gate) LastResult() (Result, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return Result{}, false
	}
	return *g.last, true
}

// RequestConfirmation arms the gate.
func (g *Gate) RequestConfirmation() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == InFlight {
		return ErrBusy
	}
	g.phase = AwaitingConfirmation
	return nil
}

// Cancel disarms the gate. It has no effect while a request is in flight.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == AwaitingConfirmation {
		g.phase = Idle
	}
}

// Confirm sends exactly one launch request and returns its result. The
// error is only non-nil when no request was sent (ErrBusy, ErrNotArmed).
func (g *Gate) Confirm(ctx context.Context) (Result, error) {
	g.mu.Lock()
	switch g.phase {
	case InFlight:
		g.mu.Unlock()
		return Result{}, ErrBusy
	case Idle:
		g.mu.Unlock()
		return Result{}, ErrNotArmed
	}
	g.phase = InFlight
	g.mu.Unlock()

	g.log.Info("launch command sent")
	result := g.send(ctx)
	g.log.Info("launch result: %s", result)
	g.metrics.LaunchSent(result.StatusCode)

	g.mu.Lock()
	g.phase = Idle
	g.last = &result
	g.mu.Unlock()
	return result, nil
}

// Launch runs both steps: arm, ask confirm, and send if it returns true.
func (g *Gate) Launch(ctx context.Context, confirm func() bool) (Result, error) {
	if err := g.RequestConfirmation(); err != nil {
		return Result{}, err
	}
	if confirm != nil && !confirm() {
		g.Cancel()
		return Result{}, ErrCancelled
	}
	return g.Confirm(ctx)
}

func (g *Gate) send(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.launcher.Launch(ctx)
	if err != nil {
		return Result{StatusCode: 0, Message: errors.Summary(err), At: g.now()}
	}
	return Result{StatusCode: resp.StatusCode, Message: resp.Message, At: g.now()}
}
