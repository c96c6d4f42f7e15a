// Package testing provides an in-process ground station backend for tests.
//
// Backend serves the same routes as the real server: event list and
// ingest, session list, launch and the live WebSocket feed. Tests drive
// it directly (AddEvent, DropStreams, SetLaunch...) and inspect what the
// client did (LaunchCalls, StreamConnections, ClientIDs).
package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
	"github.com/groundctl/groundctl/internal/api"
	"github.com/groundctl/groundctl/internal/telemetry"
)

// eventLimit matches the backend's page size.
const eventLimit = 50

type subscriber struct {
	conn       *websocket.Conn
	identifier string
}

// Backend is a fake ground station server.
type Backend struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu            sync.Mutex
	events        []telemetry.Event
	nextID        int64
	sessions      []string
	sessionsSet   bool
	eventsStatus  int
	sessionStatus int
	launch        api.LaunchResponse
	launchStatus  int
	launchHold    chan struct{}
	launchCalls   int
	subscribers   map[*websocket.Conn]*subscriber
	connects      int
	clientIDs     []string
	now           func() time.Time
}

// NewBackend starts a backend on a random local port. Close it when done.
func NewBackend() *Backend {
	b := &Backend{
		launch:       api.LaunchResponse{StatusCode: http.StatusOK, Message: "OK"},
		launchStatus: http.StatusOK,
		subscribers:  make(map[*websocket.Conn]*subscriber),
		now:          time.Now,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(b.recordClientID)
	r.Get(api.PathEvents, b.handleListEvents)
	r.Post(api.PathEvents, b.handleCreateEvent)
	r.Get(api.PathSessions, b.handleSessions)
	r.Get(api.PathLaunch, b.handleLaunch)
	r.Get(api.PathStream, b.handleStream)

	b.server = httptest.NewServer(r)
	return b
}

// URL returns the HTTP base URL.
func (b *Backend) URL() string {
	return b.server.URL
}

// Close drops all live connections and stops the server.
func (b *Backend) Close() {
	b.DropStreams()
	b.mu.Lock()
	if b.launchHold != nil {
		close(b.launchHold)
		b.launchHold = nil
	}
	b.mu.Unlock()
	b.server.Close()
}

// AddEvent stores an event and pushes it to live subscribers of its session.
func (b *Backend) AddEvent(in telemetry.EventCreate) telemetry.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(in)
}

func (b *Backend) addLocked(in telemetry.EventCreate) telemetry.Event {
	b.nextID++
	e := telemetry.Event{
		ID:           b.nextID,
		Identifier:   in.Identifier,
		Timestamp:    in.Timestamp,
		Velocity:     in.Velocity,
		AirPressure:  in.AirPressure,
		SaveDatetime: b.now().UTC(),
	}
	b.events = append([]telemetry.Event{e}, b.events...)

	frame, err := encodeFrame("event", e)
	if err == nil {
		b.broadcastLocked(in.Identifier, frame)
	}
	return e
}

// SendRaw writes payload verbatim to every subscriber of identifier.
func (b *Backend) SendRaw(identifier string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcastLocked(identifier, payload)
}

func (b *Backend) broadcastLocked(identifier string, payload []byte) {
	for conn, sub := range b.subscribers {
		if sub.identifier != identifier {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = conn.Close()
			delete(b.subscribers, conn)
		}
	}
}

// DropStreams closes every live connection from the server side.
func (b *Backend) DropStreams() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.subscribers {
		_ = conn.Close()
		delete(b.subscribers, conn)
	}
}

// SetSessions overrides the session list. Without it the list is derived
// from stored events, most recent first.
func (b *Backend) SetSessions(ids ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = append([]string(nil), ids...)
	b.sessionsSet = true
}

// FailEvents makes GET /api/events/ answer status. Zero restores normal service.
func (b *Backend) FailEvents(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eventsStatus = status
}

// FailSessions makes GET /api/events/sessions answer status. Zero restores
// normal service.
func (b *Backend) FailSessions(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionStatus = status
}

// SetLaunch sets the launch answer.
func (b *Backend) SetLaunch(httpStatus int, resp api.LaunchResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.launchStatus = httpStatus
	b.launch = resp
}

// HoldLaunch makes launch requests block until the returned func is called.
func (b *Backend) HoldLaunch() (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	hold := make(chan struct{})
	b.launchHold = hold
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.launchHold == hold {
				b.launchHold = nil
				close(hold)
			}
		})
	}
}

// LaunchCalls returns how many launch requests arrived.
func (b *Backend) LaunchCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.launchCalls
}

// StreamConnections returns how many WebSocket upgrades succeeded.
func (b *Backend) StreamConnections() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connects
}

// Subscribers returns the number of open WebSocket connections.
func (b *Backend) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// ClientIDs returns the X-Client-Id values seen, in request order.
func (b *Backend) ClientIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.clientIDs...)
}

// Events returns the stored events, newest first.
func (b *Backend) Events() []telemetry.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]telemetry.Event(nil), b.events...)
}

func (b *Backend) recordClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.clientIDs = append(b.clientIDs, r.Header.Get(api.ClientIDHeader))
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) latestLocked(identifier string) []telemetry.Event {
	out := make([]telemetry.Event, 0, eventLimit)
	for _, e := range b.events {
		if identifier != "" && e.Identifier != identifier {
			continue
		}
		out = append(out, e)
		if len(out) == eventLimit {
			break
		}
	}
	return out
}

func (b *Backend) handleListEvents(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status := b.eventsStatus
	events := b.latestLocked(r.URL.Query().Get("identifier"))
	b.mu.Unlock()

	if status != 0 {
		http.Error(w, "events unavailable", status)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (b *Backend) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in telemetry.EventCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Identifier) == "" {
		http.Error(w, "invalid event", http.StatusUnprocessableEntity)
		return
	}
	b.AddEvent(in)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleSessions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status := b.sessionStatus
	var ids []string
	if b.sessionsSet {
		ids = append([]string{}, b.sessions...)
	} else {
		seen := make(map[string]bool)
		ids = []string{}
		for _, e := range b.events {
			if !seen[e.Identifier] {
				seen[e.Identifier] = true
				ids = append(ids, e.Identifier)
			}
		}
	}
	b.mu.Unlock()

	if status != 0 {
		http.Error(w, "sessions unavailable", status)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (b *Backend) handleLaunch(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.launchCalls++
	hold := b.launchHold
	status := b.launchStatus
	resp := b.launch
	b.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}
	writeJSON(w, status, resp)
}

func (b *Backend) handleStream(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	// Register and send the snapshot under one lock so no event can slip
	// between them.
	b.mu.Lock()
	b.connects++
	initial, err := encodeFrame("initial", b.latestLocked(identifier))
	if err == nil {
		err = conn.WriteMessage(websocket.TextMessage, initial)
	}
	if err != nil {
		b.mu.Unlock()
		_ = conn.Close()
		return
	}
	b.subscribers[conn] = &subscriber{conn: conn, identifier: identifier}
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.subscribers, conn)
			b.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func encodeFrame(frameType string, data interface{}) ([]byte, error) {
	return json.Marshal(struct {
		Type string      `json:"type"`
		Data interface{} `json:"data"`
	}{frameType, data})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
