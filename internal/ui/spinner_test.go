package ui

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer is a strings.Builder safe for the animation goroutine.
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestNewSpinner(t *testing.T) {
	s := NewSpinner(&syncBuffer{}, "Sending")
	assert.Equal(t, "Sending", s.Label())
	assert.Equal(t, SpinnerPending, s.State())
	assert.Equal(t, time.Duration(0), s.Elapsed())
}

func TestSpinnerStartStop(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Sending")

	s.Start()
	s.Start() // no-op
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	s.Stop() // no-op

	assert.Equal(t, SpinnerInProgress, s.State(), "Stop does not change state")
	assert.Contains(t, buf.String(), "Sending...")
	assert.Greater(t, s.Elapsed(), time.Duration(0))
}

func TestSpinnerFinish(t *testing.T) {
	tests := []struct {
		name      string
		finish    func(s *Spinner)
		wantState SpinnerState
		want      string
	}{
		{
			name:      "success",
			finish:    func(s *Spinner) { s.Success("Status: 200 — OK") },
			wantState: SpinnerSuccess,
			want:      SymbolSuccess + " Status: 200 — OK",
		},
		{
			name:      "fail",
			finish:    func(s *Spinner) { s.Fail("Status: 0 — connection refused") },
			wantState: SpinnerFailed,
			want:      SymbolFail + " Status: 0 — connection refused",
		},
		{
			name:      "empty message uses label",
			finish:    func(s *Spinner) { s.Success("") },
			wantState: SpinnerSuccess,
			want:      SymbolSuccess + " Fetching events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf syncBuffer
			s := NewSpinner(&buf, "Fetching events")
			s.Start()
			tt.finish(s)

			assert.Equal(t, tt.wantState, s.State())
			out := buf.String()
			assert.Contains(t, out, tt.want)
			assert.True(t, strings.HasSuffix(out, "s\n"), "final line ends with timing")
		})
	}
}

func TestSpinnerFrames(t *testing.T) {
	assert.Equal(t, []string{"◐", "◓", "◑", "◒"}, spinnerFrames)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "0.00s"},
		{50 * time.Millisecond, "0.05s"},
		{100 * time.Millisecond, "0.1s"},
		{1500 * time.Millisecond, "1.5s"},
		{10 * time.Second, "10.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.duration))
		})
	}
}
