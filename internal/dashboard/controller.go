// Package dashboard runs the telemetry dashboard's event loop.
//
// Controller owns the event buffer, the session registry and the
// calibration value. A single goroutine (Run) mutates them; sources and
// fetches only post messages into its inbox. Every change is published as
// an immutable View.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/groundctl/groundctl/internal/clock"
	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/logger"
	"github.com/groundctl/groundctl/internal/metrics"
	"github.com/groundctl/groundctl/internal/sessions"
	"github.com/groundctl/groundctl/internal/settings"
	"github.com/groundctl/groundctl/internal/stream"
	"github.com/groundctl/groundctl/internal/telemetry"
)

const (
	// DefaultSessionPollInterval is how often the session list is re-fetched.
	DefaultSessionPollInterval = 5 * time.Second

	// DefaultStalenessTick is how often "updated Ns ago" is recomputed.
	DefaultStalenessTick = time.Second

	inboxSize = 64
)

// Options configures a Controller.
type Options struct {
	// NewSource builds the live source with the controller's sink.
	NewSource func(sink stream.Sink) stream.Source
	// Sessions lists the known session identifiers.
	Sessions sessions.Lister

	BufferSize          int
	SessionPollInterval time.Duration
	StalenessTick       time.Duration
	ScaleHeight         float64

	// ReferencePressure is the calibration loaded at startup.
	ReferencePressure float64
	// Settings persists calibration changes. Optional.
	Settings *settings.Store

	// Session is preferred over the first listed session when present.
	Session string

	Clock   clock.Clock
	Metrics *metrics.Collector
	Logger  logger.Logger
}

type sessionsResult struct {
	ids []string
	err error
}

// Controller is the dashboard's single-writer state owner.
type Controller struct {
	source        stream.Source
	lister        sessions.Lister
	registry      *sessions.Registry
	buffer        *telemetry.Buffer
	deriver       telemetry.Deriver
	arrivals      *telemetry.ArrivalStats
	settings      *settings.Store
	clock         clock.Clock
	metrics       *metrics.Collector
	log           logger.Logger
	sessionPoll   time.Duration
	stalenessTick time.Duration

	inbox chan interface{}
	done  chan struct{}
	views chan View

	// Loop-owned state.
	fetchCtx   context.Context
	preferred  string
	generation uint64
	state      stream.State
	streamErr  string
	fetchErr   string
	saveErr    string
	reference  float64
	lastUpdate time.Time
	hasUpdate  bool
	seconds    int
	newCount   int
	// publishedLen is the buffer length at the last publication on this
	// session. Zero until the session's first rows have been published.
	publishedLen int
	reconnects   int
	fetching     bool
	initialized  bool

	mu   sync.Mutex
	last View
}

// New creates a controller. Call Run to start it.
func New(opts Options) *Controller {
	c := &Controller{
		lister:        opts.Sessions,
		registry:      sessions.NewRegistry(opts.Sessions),
		buffer:        telemetry.NewBuffer(opts.BufferSize),
		deriver:       telemetry.NewDeriver(opts.ScaleHeight),
		arrivals:      telemetry.NewArrivalStats(),
		settings:      opts.Settings,
		clock:         opts.Clock,
		metrics:       opts.Metrics,
		log:           opts.Logger,
		sessionPoll:   opts.SessionPollInterval,
		stalenessTick: opts.StalenessTick,
		inbox:         make(chan interface{}, inboxSize),
		done:          make(chan struct{}),
		views:         make(chan View, 1),
		preferred:     opts.Session,
		state:         stream.Unsubscribed,
		reference:     settings.Sanitize(opts.ReferencePressure),
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.log == nil {
		c.log = logger.Noop()
	}
	if c.sessionPoll <= 0 {
		c.sessionPoll = DefaultSessionPollInterval
	}
	if c.stalenessTick <= 0 {
		c.stalenessTick = DefaultStalenessTick
	}
	c.source = opts.NewSource(c.sink)
	c.last = c.buildView()
	return c
}

// Views delivers published views. Only the newest unread view is kept.
func (c *Controller) Views() <-chan View {
	return c.views
}

// Snapshot returns the most recently published view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// SelectSession switches to id if it is listed.
func (c *Controller) SelectSession(id string) {
	c.post(func() {
		if c.registry.Select(id) {
			c.switchSession()
			return
		}
		if id != c.registry.Selected() {
			c.log.Warn("session %q is not listed", id)
		}
	})
}

// NextSession selects the next listed session.
func (c *Controller) NextSession() {
	c.post(func() {
		if c.registry.Next() {
			c.switchSession()
		}
	})
}

// PrevSession selects the previous listed session.
func (c *Controller) PrevSession() {
	c.post(func() {
		if c.registry.Prev() {
			c.switchSession()
		}
	})
}

// SetReferencePressure changes the calibration. Non-positive or invalid
// values disable altitude. The value is persisted when a store is set.
func (c *Controller) SetReferencePressure(v float64) {
	c.post(func() {
		c.reference = settings.Sanitize(v)
		c.log.Info("reference pressure set to %g", c.reference)
		if c.settings == nil {
			return
		}
		if err := c.settings.SetReferencePressure(c.reference); err != nil {
			c.log.Error("save reference pressure: %v", err)
			c.saveErr = errors.Summary(err)
			return
		}
		c.saveErr = ""
	})
}

// Refresh fetches the session list now and re-subscribes a disconnected
// stream without waiting for its reconnect timer.
func (c *Controller) Refresh() {
	c.post(func() {
		c.fetchSessions()
		if id := c.registry.Selected(); id != "" && c.state == stream.Disconnected {
			c.log.Info("manual refresh: resubscribing %s", id)
			c.subscribe(id)
		}
	})
}

// Run processes messages until ctx is cancelled, then closes the source
// and stops every ticker.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	sessionTicker := c.clock.NewTicker(c.sessionPoll)
	defer sessionTicker.Stop()
	staleTicker := c.clock.NewTicker(c.stalenessTick)
	defer staleTicker.Stop()
	defer c.source.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.fetchCtx = runCtx
	c.fetchSessions()
	c.publish()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug("dashboard loop stopped")
			return nil
		case <-sessionTicker.C:
			c.fetchSessions()
		case <-staleTicker.C:
			c.tick()
		case msg := <-c.inbox:
			c.handle(msg)
		}
		c.publish()
	}
}

// sink is handed to the source. It blocks until the loop accepts the
// update or the loop has exited.
func (c *Controller) sink(u stream.Update) {
	select {
	case c.inbox <- u:
	case <-c.done:
	}
}

func (c *Controller) post(msg interface{}) {
	select {
	case c.inbox <- msg:
	case <-c.done:
	}
}

func (c *Controller) handle(msg interface{}) {
	switch m := msg.(type) {
	case stream.Update:
		c.apply(m)
	case sessionsResult:
		c.applySessions(m)
	case func():
		m()
	}
}

func (c *Controller) fetchSessions() {
	if c.fetching || c.lister == nil || c.fetchCtx == nil {
		return
	}
	c.fetching = true
	ctx := c.fetchCtx
	go func() {
		ids, err := c.lister.FetchSessions(ctx)
		if ctx.Err() != nil {
			return
		}
		c.post(sessionsResult{ids: ids, err: err})
	}()
}

func (c *Controller) applySessions(r sessionsResult) {
	c.fetching = false
	if r.err != nil {
		c.log.Warn("session list: %v", r.err)
		c.fetchErr = errors.Summary(r.err)
		c.metrics.FetchError("sessions")
		return
	}
	c.fetchErr = ""

	changed := c.registry.Apply(r.ids)
	if c.preferred != "" && c.registry.Select(c.preferred) {
		changed = true
	}
	if len(c.registry.IDs()) > 0 {
		c.preferred = ""
	}
	c.metrics.SetSessions(len(c.registry.IDs()))

	if changed || !c.initialized {
		c.initialized = true
		c.switchSession()
	}
}

// switchSession rebuilds the subscription for the registry's selection.
// The buffer and staleness are cleared before any message of the new
// generation can arrive.
func (c *Controller) switchSession() {
	c.source.Teardown()
	c.buffer.Clear()
	c.arrivals.Reset()
	c.hasUpdate = false
	c.lastUpdate = time.Time{}
	c.seconds = 0
	c.newCount = 0
	c.publishedLen = 0
	c.reconnects = 0
	c.streamErr = ""

	id := c.registry.Selected()
	if id == "" {
		c.generation = c.source.Generation()
		c.state = c.source.State()
		c.log.Info("no session selected")
		c.metrics.SetStreamState(c.state.String())
		return
	}
	c.log.Info("switching to session %s", id)
	c.subscribe(id)
}

func (c *Controller) subscribe(id string) {
	c.generation = c.source.Subscribe(id)
	c.state = c.source.State()
	c.metrics.SetStreamState(c.state.String())
}

func (c *Controller) apply(u stream.Update) {
	if u.Generation != c.generation {
		c.log.Debug("dropping %s update of generation %d (current %d)", u.Kind, u.Generation, c.generation)
		c.metrics.StaleDropped()
		return
	}

	switch u.Kind {
	case stream.UpdateState:
		c.state = u.State
		c.metrics.SetStreamState(u.State.String())
		if u.Err != nil {
			c.streamErr = errors.Summary(u.Err)
		} else if u.State == stream.Connected {
			c.streamErr = ""
		}
		if u.Reconnect {
			c.reconnects++
			c.metrics.Reconnect()
		}

	case stream.UpdateSnapshot:
		c.buffer.ApplySnapshot(u.Events)
		c.received(u.At, u.Kind)

	case stream.UpdateEvent:
		c.buffer.ApplyIncrement(u.Event)
		c.received(u.At, u.Kind)
	}
}

func (c *Controller) received(at time.Time, kind stream.UpdateKind) {
	if at.IsZero() {
		at = c.clock.Now()
	}
	c.lastUpdate = at
	c.hasUpdate = true
	c.seconds = 0
	c.arrivals.Observe(at)
	c.metrics.MessageApplied(kind.String())
}

func (c *Controller) tick() {
	if !c.hasUpdate {
		return
	}
	elapsed := c.clock.Now().Sub(c.lastUpdate)
	if elapsed < 0 {
		elapsed = 0
	}
	c.seconds = int(elapsed / time.Second)
}

func (c *Controller) buildView() View {
	events := c.buffer.Events()
	enabled := c.reference > 0
	rows := make([]Row, len(events))
	for i, e := range events {
		rows[i] = Row{Event: e, New: i < c.newCount}
		if enabled {
			rows[i].Altitude, rows[i].HasAltitude = c.deriver.Altitude(e.AirPressure, c.reference)
		}
	}

	summary := c.arrivals.Summary()
	return View{
		Rows:               rows,
		Status:             StatusFor(c.state),
		State:              c.state,
		SecondsSinceUpdate: c.seconds,
		HasUpdate:          c.hasUpdate,
		NewEventCount:      c.newCount,
		StreamError:        c.streamErr,
		FetchError:         c.fetchErr,
		SaveError:          c.saveErr,
		Sessions:           c.registry.IDs(),
		Selected:           c.registry.Selected(),
		ReferencePressure:  c.reference,
		AltitudeEnabled:    enabled,
		Stats: Stats{
			Messages:   summary.Messages,
			P50:        summary.P50,
			P95:        summary.P95,
			Reconnects: c.reconnects,
		},
		Generation: c.generation,
		At:         c.clock.Now(),
	}
}

// countNew sets newCount to the growth of the buffer since the previous
// publication. A full buffer does not grow, so its rows are not highlighted.
func (c *Controller) countNew() {
	cur := c.buffer.Len()
	c.newCount = 0
	if c.publishedLen > 0 && cur > c.publishedLen {
		c.newCount = cur - c.publishedLen
	}
	c.publishedLen = cur
}

func (c *Controller) publish() {
	c.countNew()
	v := c.buildView()

	c.metrics.SetBuffered(len(v.Rows))
	c.metrics.SetSecondsSinceUpdate(v.SecondsSinceUpdate, v.HasUpdate)
	c.metrics.SetArrivalGaps(v.Stats.P50, v.Stats.P95)

	c.mu.Lock()
	c.last = v
	c.mu.Unlock()

	select {
	case <-c.views:
	default:
	}
	select {
	case c.views <- v:
	default:
	}
}
