package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/groundctl/groundctl/internal/api"
	apitesting "github.com/groundctl/groundctl/internal/api/testing"
	"github.com/groundctl/groundctl/internal/command"
	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/logger"
	"github.com/groundctl/groundctl/internal/settings"
	"github.com/groundctl/groundctl/internal/telemetry"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func newTestClient(t *testing.T, b *apitesting.Backend) *api.Client {
	t.Helper()
	client, err := api.New(api.Options{BaseURL: b.URL(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func TestRunEvents_DefaultsToNewestSession(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()
	b.AddEvent(telemetry.EventCreate{Identifier: "old", Timestamp: "T+1", Velocity: 1, AirPressure: 1000})
	b.AddEvent(telemetry.EventCreate{Identifier: "new", Timestamp: "T+1", Velocity: 12.5, AirPressure: 900})
	b.AddEvent(telemetry.EventCreate{Identifier: "new", Timestamp: "T+2", Velocity: 20, AirPressure: 890})

	var out bytes.Buffer
	err := runEvents(context.Background(), &out, newTestClient(t, b), eventsOptions{Server: b.URL()})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "session new")
	assert.Contains(t, s, "12.50")
	assert.Contains(t, s, "T+2")
	assert.NotContains(t, s, "ALTITUDE", "altitude column is hidden without a reference")
	assert.Contains(t, s, "velocity")
	assert.Contains(t, s, "pressure")
}

func TestRunEvents_AltitudeWithReference(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()
	b.AddEvent(telemetry.EventCreate{Identifier: "flight", Timestamp: "T+1", Velocity: 10, AirPressure: 900})

	var out bytes.Buffer
	err := runEvents(context.Background(), &out, newTestClient(t, b), eventsOptions{
		Session:           "flight",
		ReferencePressure: 1013.25,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ALTITUDE")
	assert.Contains(t, out.String(), "1007.45")
}

func TestRunEvents_JSON(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()
	b.AddEvent(telemetry.EventCreate{Identifier: "flight", Timestamp: "T+1", Velocity: 10, AirPressure: 900})
	b.AddEvent(telemetry.EventCreate{Identifier: "flight", Timestamp: "T+2", Velocity: 11, AirPressure: 0})

	var out bytes.Buffer
	err := runEvents(context.Background(), &out, newTestClient(t, b), eventsOptions{
		Session:           "flight",
		JSON:              true,
		ReferencePressure: 1013.25,
	})
	require.NoError(t, err)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Session string `json:"session"`
			Events  []struct {
				Timestamp string   `json:"timestamp"`
				Altitude  *float64 `json:"altitude"`
			} `json:"events"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "flight", env.Data.Session)
	require.Len(t, env.Data.Events, 2)
	assert.Equal(t, "T+2", env.Data.Events[0].Timestamp)
	assert.Nil(t, env.Data.Events[0].Altitude, "zero pressure has no altitude")
	require.NotNil(t, env.Data.Events[1].Altitude)
	assert.InDelta(t, 1007.45, *env.Data.Events[1].Altitude, 0.01)
}

func TestRunEvents_NoSessions(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()

	var out bytes.Buffer
	err := runEvents(context.Background(), &out, newTestClient(t, b), eventsOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
	assert.Contains(t, err.Error(), "No sessions yet")
}

func TestRunEvents_FetchFailure(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()
	b.FailEvents(500)

	var out bytes.Buffer
	err := runEvents(context.Background(), &out, newTestClient(t, b), eventsOptions{Session: "flight"})
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestSeries_OldestFirst(t *testing.T) {
	events := []telemetry.Event{{Velocity: 3}, {Velocity: 2}, {Velocity: 1}}
	assert.Equal(t, []float64{1, 2, 3}, series(events, velocityOf))
	assert.Empty(t, series(nil, velocityOf))
}

func TestRunSessions(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		asJSON   bool
		contains []string
	}{
		{name: "table", ids: []string{"b", "a"}, contains: []string{"▸", "1.", "b", "2.", "a"}},
		{name: "empty", ids: nil, contains: []string{"No sessions"}},
		{name: "json", ids: []string{"b", "a"}, asJSON: true, contains: []string{`"selected": "b"`, `"sessions"`}},
		{name: "json empty", ids: nil, asJSON: true, contains: []string{`"sessions": []`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := apitesting.NewBackend()
			defer b.Close()
			b.SetSessions(tt.ids...)

			var out bytes.Buffer
			require.NoError(t, runSessions(context.Background(), &out, newTestClient(t, b), tt.asJSON))
			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRunSessions_Failure(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()
	b.FailSessions(503)

	var out bytes.Buffer
	err := runSessions(context.Background(), &out, newTestClient(t, b), false)
	require.Error(t, err)
}

func newTestGate(t *testing.T, b *apitesting.Backend) *command.Gate {
	t.Helper()
	return command.NewGate(command.Options{Launcher: newTestClient(t, b), Timeout: 5 * time.Second})
}

func TestRunLaunch_Yes(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()
	b.SetLaunch(200, api.LaunchResponse{StatusCode: 200, Message: "ignition"})

	var out bytes.Buffer
	err := runLaunch(context.Background(), &out, newTestGate(t, b), launchOptions{Yes: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Status: 200 — ignition")
	assert.Equal(t, 1, b.LaunchCalls())
}

func TestRunLaunch_NeedsTerminalWithoutYes(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()

	var out bytes.Buffer
	err := runLaunch(context.Background(), &out, newTestGate(t, b), launchOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCommand))
	assert.Contains(t, err.Error(), "--yes")
	assert.Zero(t, b.LaunchCalls())
}

func TestRunLaunch_Prompt(t *testing.T) {
	tests := []struct {
		name      string
		answer    bool
		promptErr error
		wantCalls int
		wantOut   string
		wantErr   bool
	}{
		{name: "confirmed", answer: true, wantCalls: 1, wantOut: "Status: 200"},
		{name: "declined", answer: false, wantCalls: 0, wantOut: "Launch cancelled."},
		{name: "prompt fails", promptErr: stderrors.New("tty closed"), wantCalls: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := apitesting.NewBackend()
			defer b.Close()
			gate := newTestGate(t, b)

			var asked string
			var out bytes.Buffer
			err := runLaunch(context.Background(), &out, gate, launchOptions{
				Interactive: true,
				Confirm: func(title, description string) (bool, error) {
					asked = title
					return tt.answer, tt.promptErr
				},
			})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "Send LAUNCH command?", asked)
			assert.Contains(t, out.String(), tt.wantOut)
			assert.Equal(t, tt.wantCalls, b.LaunchCalls())
			assert.Equal(t, command.Idle, gate.Phase())
		})
	}
}

func TestRunLaunch_Rejected(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()
	b.SetLaunch(503, api.LaunchResponse{StatusCode: 503, Message: "pad not ready"})

	var out bytes.Buffer
	err := runLaunch(context.Background(), &out, newTestGate(t, b), launchOptions{Yes: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Status: 503 — pad not ready")
	assert.Equal(t, 1, b.LaunchCalls(), "a rejected launch is never retried")
}

func TestRunLaunch_JSON(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()

	var out bytes.Buffer
	err := runLaunch(context.Background(), &out, newTestGate(t, b), launchOptions{Yes: true, JSON: true})
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(200), data["status_code"])
}

func TestSettingsCommands(t *testing.T) {
	store := settings.NewStore(filepath.Join(t.TempDir(), settings.FileName))

	var out bytes.Buffer
	require.NoError(t, runSettingsShow(&out, store, false))
	assert.Contains(t, out.String(), "not set (altitude disabled)")

	out.Reset()
	require.NoError(t, runSetReference(&out, store, "1013.25"))
	assert.Contains(t, out.String(), "set to 1013.25 hPa")

	ref, err := store.ReferencePressure()
	require.NoError(t, err)
	assert.Equal(t, 1013.25, ref)

	out.Reset()
	require.NoError(t, runSettingsShow(&out, store, false))
	assert.Contains(t, out.String(), "1013.25 hPa")

	out.Reset()
	require.NoError(t, runSettingsShow(&out, store, true))
	assert.Contains(t, out.String(), `"altitude_enabled": true`)

	out.Reset()
	require.NoError(t, runSetReference(&out, store, "-5"))
	assert.Contains(t, out.String(), "cleared")
	ref, err = store.ReferencePressure()
	require.NoError(t, err)
	assert.Zero(t, ref)
}

func TestRunSetReference_Invalid(t *testing.T) {
	store := settings.NewStore(filepath.Join(t.TempDir(), settings.FileName))

	var out bytes.Buffer
	err := runSetReference(&out, store, "abc")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSettings))
	assert.Empty(t, out.String())
}

func TestRunSimulate_Count(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()

	var out bytes.Buffer
	sent, err := runSimulate(context.Background(), &out, newTestClient(t, b), logger.Noop(), simulateOptions{
		Session:  "sim-test",
		Interval: time.Millisecond,
		Count:    3,
		Seed:     42,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Contains(t, out.String(), "Sent 3 events to sim-test")

	events := b.Events()
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, "sim-test", e.Identifier)
	}
}

func TestRunSimulate_Quiet(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()

	var out bytes.Buffer
	sent, err := runSimulate(context.Background(), &out, newTestClient(t, b), logger.Noop(), simulateOptions{
		Interval: time.Millisecond,
		Count:    2,
		Quiet:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Empty(t, out.String())
	require.Len(t, b.Events(), 2)
	assert.Contains(t, b.Events()[0].Identifier, "sim-")
}
