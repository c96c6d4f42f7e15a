package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/stream"
	"github.com/groundctl/groundctl/internal/telemetry"
)

// Backend is the part of the API client the checks exercise.
type Backend interface {
	FetchSessions(ctx context.Context) ([]string, error)
	FetchEvents(ctx context.Context, identifier string) ([]telemetry.Event, error)
}

// SessionsCheck verifies the backend answers the session list.
type SessionsCheck struct {
	Backend Backend
	Server  string

	// Sessions is set after Run for checks that depend on it.
	Sessions []string
}

func (c *SessionsCheck) Name() string     { return "backend_sessions" }
func (c *SessionsCheck) Category() string { return CategoryBackend }

func (c *SessionsCheck) Run(ctx context.Context) CheckResult {
	start := time.Now()
	ids, err := c.Backend.FetchSessions(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Backend unreachable at %s: %s", c.Server, shortErr(err)),
			Suggestion: "Check the backend is running, or pass --server",
		}
	}
	c.Sessions = ids

	latency := formatLatency(time.Since(start))
	if len(ids) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Backend reachable (%s) but has no sessions", latency),
			Suggestion: "Run 'groundctl simulate' to create one",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Backend reachable (%s), %d session%s", latency, len(ids), pluralize(len(ids))),
	}
}

func (c *SessionsCheck) Fix() error {
	return nil
}

// EventsCheck fetches the newest session's events.
type EventsCheck struct {
	Backend Backend
	// Session to fetch. Empty fetches across all sessions.
	Session string
}

func (c *EventsCheck) Name() string     { return "backend_events" }
func (c *EventsCheck) Category() string { return CategoryBackend }

func (c *EventsCheck) Run(ctx context.Context) CheckResult {
	events, err := c.Backend.FetchEvents(ctx, c.Session)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Events endpoint failed: %s", shortErr(err)),
			Suggestion: "Check the backend logs",
		}
	}

	target := "all sessions"
	if c.Session != "" {
		target = c.Session
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Events endpoint OK (%d event%s for %s)", len(events), pluralize(len(events)), target),
	}
}

func (c *EventsCheck) Fix() error {
	return nil
}

// StreamCheck opens and closes one live connection.
type StreamCheck struct {
	Dialer stream.Dialer
	URL    string
}

func (c *StreamCheck) Name() string     { return "backend_stream" }
func (c *StreamCheck) Category() string { return CategoryBackend }

func (c *StreamCheck) Run(ctx context.Context) CheckResult {
	start := time.Now()
	conn, err := c.Dialer.Dial(ctx, c.URL)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Live stream unavailable: %s", shortErr(err)),
			Suggestion: "The dashboard still works with --poll or stream.mode: poll",
		}
	}
	_ = conn.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Live stream connected (%s)", formatLatency(time.Since(start))),
	}
}

func (c *StreamCheck) Fix() error {
	return nil
}

// formatLatency formats a duration for display.
func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// shortErr keeps report lines to one line.
func shortErr(err error) string {
	return errors.Summary(err)
}

// NewBackendChecks returns the reachability checks. The stream check is
// left out when streamURL is empty (poll mode).
func NewBackendChecks(backend Backend, server string, dialer stream.Dialer, streamURL string) []Check {
	checks := []Check{
		&SessionsCheck{Backend: backend, Server: server},
		&EventsCheck{Backend: backend},
	}
	if streamURL != "" && dialer != nil {
		checks = append(checks, &StreamCheck{Dialer: dialer, URL: streamURL})
	}
	return checks
}
