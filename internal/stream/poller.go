package stream

import (
	"context"
	"sync"
	"time"

	"github.com/groundctl/groundctl/internal/clock"
	"github.com/groundctl/groundctl/internal/logger"
	"github.com/groundctl/groundctl/internal/telemetry"
)

// DefaultPollInterval is the fetch period in poll mode.
const DefaultPollInterval = 2 * time.Second

// Fetcher returns the latest events for a session, newest first.
type Fetcher interface {
	FetchEvents(ctx context.Context, identifier string) ([]telemetry.Event, error)
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	Fetcher  Fetcher
	Interval time.Duration
	Clock    clock.Clock
	Sink     Sink
	Logger   logger.Logger
}

// Poller is a Source that fetches the latest events on a fixed interval and
// emits each result as a snapshot. A failed fetch moves it to Disconnected;
// the next tick retries.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	clock    clock.Clock
	sink     Sink
	log      logger.Logger

	mu         sync.Mutex
	state      State
	lastErr    error
	generation uint64
	identifier string
	cancel     context.CancelFunc
	ticker     *clock.Ticker
	closed     bool
}

// NewPoller creates an idle poller in the Unsubscribed state.
func NewPoller(opts PollerOptions) *Poller {
	p := &Poller{
		fetcher:  opts.Fetcher,
		interval: opts.Interval,
		clock:    opts.Clock,
		sink:     opts.Sink,
		log:      opts.Logger,
		state:    Unsubscribed,
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.clock == nil {
		p.clock = clock.Real()
	}
	if p.sink == nil {
		p.sink = func(Update) {}
	}
	if p.log == nil {
		p.log = logger.Noop()
	}
	return p
}

// Subscribe implements Source. The first fetch starts immediately.
func (p *Poller) Subscribe(identifier string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.teardownLocked()
	if p.closed {
		return p.generation
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.ticker = p.clock.NewTicker(p.interval)
	p.identifier = identifier
	p.state = Connecting

	go p.loop(ctx, p.generation, identifier, p.ticker)
	p.log.Info("polling %s every %s (generation %d)", identifier, p.interval, p.generation)
	return p.generation
}

// Teardown implements Source.
func (p *Poller) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
}

// Close implements Source.
func (p *Poller) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
	p.closed = true
}

// State implements Source.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastError implements Source.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Generation implements Source.
func (p *Poller) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Identifier implements Source.
func (p *Poller) Identifier() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identifier
}

func (p *Poller) teardownLocked() {
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
	p.state = Unsubscribed
	p.lastErr = nil
	p.identifier = ""
}

func (p *Poller) loop(ctx context.Context, gen uint64, identifier string, ticker *clock.Ticker) {
	p.poll(ctx, gen, identifier)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, gen, identifier)
		}
	}
}

func (p *Poller) poll(ctx context.Context, gen uint64, identifier string) {
	events, err := p.fetcher.FetchEvents(ctx, identifier)
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	if p.generation != gen || p.closed {
		p.mu.Unlock()
		return
	}
	prev := p.state
	if err != nil {
		p.state = Disconnected
		p.lastErr = err
	} else {
		p.state = Connected
		p.lastErr = nil
	}
	next := p.state
	p.mu.Unlock()

	if err != nil {
		p.log.Warn("poll for %s failed: %v", identifier, err)
		p.emit(Update{Generation: gen, Identifier: identifier, Kind: UpdateState, State: Disconnected, Err: err})
		return
	}
	if prev != next {
		p.emit(Update{Generation: gen, Identifier: identifier, Kind: UpdateState, State: Connected, Reconnect: prev == Disconnected})
	}
	p.emit(Update{Generation: gen, Identifier: identifier, Kind: UpdateSnapshot, Events: events})
}

func (p *Poller) emit(u Update) {
	u.At = p.clock.Now()
	p.sink(u)
}
