package stream

import (
	"context"
	"sync"
	"time"

	"github.com/groundctl/groundctl/internal/clock"
	"github.com/groundctl/groundctl/internal/logger"
)

// DefaultReconnectDelay is the fixed wait before re-dialing.
const DefaultReconnectDelay = 2 * time.Second

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Dialer Dialer
	// URL maps a session identifier to the endpoint to dial.
	URL            func(identifier string) string
	ReconnectDelay time.Duration
	Clock          clock.Clock
	Sink           Sink
	Logger         logger.Logger
}

// Manager owns at most one live connection for the subscribed session.
//
// State machine:
//
//	Subscribe -> Connecting --open--> Connected --close/error--> Disconnected
//	Disconnected --ReconnectDelay--> Connecting (same generation)
//	any --Teardown/Close--> Unsubscribed
//
// Subscribe and Teardown are called by the owner and do not emit; the owner
// reads State after calling them. Asynchronous transitions and messages are
// emitted to the sink from the connection goroutine or the reconnect timer.
type Manager struct {
	dialer Dialer
	url    func(string) string
	delay  time.Duration
	clock  clock.Clock
	sink   Sink
	log    logger.Logger

	mu         sync.Mutex
	state      State
	lastErr    error
	generation uint64
	identifier string
	conn       Conn
	cancel     context.CancelFunc
	timer      *clock.Timer
	reconnects int
	closed     bool
}

// NewManager creates an idle manager in the Unsubscribed state.
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		dialer: opts.Dialer,
		url:    opts.URL,
		delay:  opts.ReconnectDelay,
		clock:  opts.Clock,
		sink:   opts.Sink,
		log:    opts.Logger,
		state:  Unsubscribed,
	}
	if m.delay <= 0 {
		m.delay = DefaultReconnectDelay
	}
	if m.clock == nil {
		m.clock = clock.Real()
	}
	if m.sink == nil {
		m.sink = func(Update) {}
	}
	if m.log == nil {
		m.log = logger.Noop()
	}
	if m.url == nil {
		m.url = func(id string) string { return id }
	}
	return m
}

// Subscribe implements Source.
func (m *Manager) Subscribe(identifier string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.teardownLocked()
	if m.closed {
		return m.generation
	}

	m.identifier = identifier
	m.state = Connecting
	m.startLocked(m.generation, identifier)
	m.log.Info("subscribe %s (generation %d)", identifier, m.generation)
	return m.generation
}

// Teardown implements Source.
func (m *Manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
}

// Close implements Source.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
	m.closed = true
}

// State implements Source.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError implements Source.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Generation implements Source.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Identifier implements Source.
func (m *Manager) Identifier() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identifier
}

// Reconnects returns how many reconnect attempts have started.
func (m *Manager) Reconnects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnects
}

// teardownLocked invalidates the current generation and releases the
// connection, the pending dial and the reconnect timer.
func (m *Manager) teardownLocked() {
	m.generation++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.state = Unsubscribed
	m.lastErr = nil
	m.identifier = ""
}

func (m *Manager) startLocked(gen uint64, identifier string) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.run(ctx, gen, identifier)
}

func (m *Manager) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation == gen && !m.closed
}

func (m *Manager) run(ctx context.Context, gen uint64, identifier string) {
	conn, err := m.dialer.Dial(ctx, m.url(identifier))
	if err != nil {
		m.fail(gen, identifier, err)
		return
	}

	m.mu.Lock()
	if m.generation != gen || m.closed {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.state = Connected
	m.lastErr = nil
	m.mu.Unlock()

	m.log.Info("stream connected for %s", identifier)
	m.emit(Update{Generation: gen, Identifier: identifier, Kind: UpdateState, State: Connected})

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.fail(gen, identifier, err)
			return
		}

		u, err := DecodeFrame(data)
		if err != nil {
			m.log.Warn("skipping frame for %s: %v", identifier, err)
			continue
		}
		if !m.current(gen) {
			return
		}
		u.Generation = gen
		u.Identifier = identifier
		m.emit(u)
	}
}

// fail moves a live generation to Disconnected and arms exactly one
// reconnect timer. Failures of a stale generation are ignored.
func (m *Manager) fail(gen uint64, identifier string, err error) {
	m.mu.Lock()
	if m.generation != gen || m.closed {
		m.mu.Unlock()
		return
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.state = Disconnected
	m.lastErr = err
	m.mu.Unlock()

	m.log.Warn("stream for %s dropped: %v (retrying in %s)", identifier, err, m.delay)
	m.emit(Update{Generation: gen, Identifier: identifier, Kind: UpdateState, State: Disconnected, Err: err})

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen || m.closed || m.timer != nil {
		return
	}
	m.timer = m.clock.AfterFunc(m.delay, func() { m.reconnect(gen, identifier) })
}

func (m *Manager) reconnect(gen uint64, identifier string) {
	m.mu.Lock()
	if m.generation != gen || m.closed {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.state = Connecting
	m.reconnects++
	m.mu.Unlock()

	m.emit(Update{Generation: gen, Identifier: identifier, Kind: UpdateState, State: Connecting, Reconnect: true})

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen || m.closed || m.state != Connecting {
		return
	}
	m.startLocked(gen, identifier)
}

func (m *Manager) emit(u Update) {
	u.At = m.clock.Now()
	m.sink(u)
}
