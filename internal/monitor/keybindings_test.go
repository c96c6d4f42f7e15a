package monitor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/groundctl/groundctl/internal/command"
	"github.com/groundctl/groundctl/internal/dashboard"
	"github.com/groundctl/groundctl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewMode_Constants(t *testing.T) {
	assert.Equal(t, ViewMode(0), ViewNormal)
	assert.NotEqual(t, ViewNormal, ViewPressureInput)
	assert.NotEqual(t, ViewPressureInput, ViewConfirmLaunch)
}

func TestHandleKeyMsg_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes(KeyQuit), {Type: tea.KeyCtrlC}} {
		t.Run(msg.String(), func(t *testing.T) {
			m := NewModel(newFakeDashboard(sampleView()), nil)
			handled, cmd := m.HandleKeyMsg(msg)
			assert.True(t, handled)
			assert.NotNil(t, cmd)
			assert.True(t, m.quitting)
		})
	}
}

func TestHandleKeyMsg_Sessions(t *testing.T) {
	dash := newFakeDashboard(sampleView())
	m := NewModel(dash, nil)

	m.HandleKeyMsg(runes(KeyNextSession))
	m.HandleKeyMsg(runes(KeyNextSession))
	m.HandleKeyMsg(runes(KeyPrevSession))
	m.HandleKeyMsg(runes(KeyRefresh))

	assert.Equal(t, 2, dash.next)
	assert.Equal(t, 1, dash.prev)
	assert.Equal(t, 1, dash.refresh)
}

func TestHandleKeyMsg_Unhandled(t *testing.T) {
	m := NewModel(newFakeDashboard(sampleView()), nil)
	handled, cmd := m.HandleKeyMsg(runes("x"))
	assert.False(t, handled)
	assert.Nil(t, cmd)
}

func TestHandleKeyMsg_Help(t *testing.T) {
	m := NewModel(newFakeDashboard(sampleView()), nil)

	m.HandleKeyMsg(runes(KeyToggleHelp))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)

	m.HandleKeyMsg(runes(KeyToggleHelp))
	m.HandleKeyMsg(runes(KeyToggleHelp))
	assert.False(t, m.showHelp)
}

func TestHandleKeyMsg_ReferencePressure(t *testing.T) {
	dash := newFakeDashboard(sampleView())
	m := NewModel(dash, nil)

	_, cmd := m.HandleKeyMsg(runes(KeyPressure))
	assert.NotNil(t, cmd, "focus starts the cursor blink")
	require.Equal(t, ViewPressureInput, m.Mode())
	assert.Empty(t, m.input.Value())

	// Typing goes to the input, not the normal bindings.
	for _, r := range "1000.5" {
		updated, _ := m.Update(runes(string(r)))
		m = updated.(Model)
	}
	assert.Equal(t, "1000.5", m.input.Value())
	updated, _ := m.Update(runes("q"))
	m = updated.(Model)
	assert.False(t, m.quitting)
	assert.Equal(t, "1000.5q", m.input.Value())

	m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewPressureInput, m.Mode(), "invalid input keeps the prompt open")
	assert.Contains(t, m.inputErr, "Not a number")
	assert.Empty(t, dash.pressure)

	m.input.SetValue("1000.5")
	m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewNormal, m.Mode())
	assert.Equal(t, []float64{1000.5}, dash.pressure)
}

func TestHandleKeyMsg_ReferencePressurePrefillAndCancel(t *testing.T) {
	v := sampleView()
	v.ReferencePressure = 1013.25
	dash := newFakeDashboard(v)
	m := NewModel(dash, nil)

	m.HandleKeyMsg(runes(KeyPressure))
	assert.Equal(t, "1013.25", m.input.Value())

	m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewNormal, m.Mode())
	assert.Empty(t, dash.pressure)
}

func TestHandleKeyMsg_LaunchConfirm(t *testing.T) {
	gate := &fakeGate{result: command.Result{StatusCode: 200, Message: "ignition"}}
	m := NewModel(newFakeDashboard(sampleView()), gate)

	m.HandleKeyMsg(runes(KeyLaunch))
	require.Equal(t, ViewConfirmLaunch, m.Mode())
	assert.Equal(t, 1, gate.requested)
	assert.Zero(t, gate.confirmed, "arming sends nothing")

	_, cmd := m.HandleKeyMsg(runes(KeyConfirm))
	require.NotNil(t, cmd)
	assert.True(t, m.launching)
	assert.Equal(t, ViewNormal, m.Mode())

	// A second L while in flight does nothing.
	m.HandleKeyMsg(runes(KeyLaunch))
	assert.Equal(t, 1, gate.requested)

	updated, _ := m.Update(cmd())
	m = updated.(Model)
	assert.Equal(t, 1, gate.confirmed)
	assert.Equal(t, "Status: 200 — ignition", m.LaunchResult())
}

func TestHandleKeyMsg_LaunchDecline(t *testing.T) {
	for _, key := range []tea.KeyMsg{runes(KeyDecline), {Type: tea.KeyEsc}, runes(KeyQuit)} {
		t.Run(key.String(), func(t *testing.T) {
			gate := &fakeGate{}
			dash := newFakeDashboard(sampleView())
			m := NewModel(dash, gate)

			m.HandleKeyMsg(runes(KeyLaunch))
			handled, cmd := m.HandleKeyMsg(key)
			assert.True(t, handled)
			assert.Nil(t, cmd)
			assert.Equal(t, 1, gate.cancelled)
			assert.Zero(t, gate.confirmed)
			assert.False(t, m.quitting)
			assert.Equal(t, ViewNormal, m.Mode())
		})
	}
}

func TestHandleKeyMsg_ConfirmSwallowsOtherKeys(t *testing.T) {
	dash := newFakeDashboard(sampleView())
	m := NewModel(dash, &fakeGate{})

	m.HandleKeyMsg(runes(KeyLaunch))
	handled, _ := m.HandleKeyMsg(runes(KeyNextSession))
	assert.True(t, handled)
	assert.Zero(t, dash.next)
	assert.Equal(t, ViewConfirmLaunch, m.Mode())
}

func TestHandleKeyMsg_LaunchArmFails(t *testing.T) {
	gate := &fakeGate{requestErr: command.ErrBusy}
	m := NewModel(newFakeDashboard(sampleView()), gate)

	m.HandleKeyMsg(runes(KeyLaunch))
	assert.Equal(t, ViewNormal, m.Mode())
	assert.Equal(t, "A launch is already in flight", m.LaunchResult())
}

func TestHandleKeyMsg_LaunchWithoutGate(t *testing.T) {
	m := NewModel(newFakeDashboard(sampleView()), nil)
	handled, cmd := m.HandleKeyMsg(runes(KeyLaunch))
	assert.True(t, handled)
	assert.Nil(t, cmd)
	assert.Equal(t, ViewNormal, m.Mode())
}

func TestHandleKeyMsg_Scroll(t *testing.T) {
	v := dashboard.View{}
	for i := 0; i < 40; i++ {
		v.Rows = append(v.Rows, dashboard.Row{Event: telemetry.Event{ID: int64(40 - i)}})
	}
	m := NewModel(newFakeDashboard(v), nil)
	m.width, m.height = 60, 10
	m.syncLog()

	m.HandleKeyMsg(runes(KeyScrollUpK))
	assert.Equal(t, 0, m.scroll, "cannot scroll above the newest row")

	m.HandleKeyMsg(runes(KeyScrollDownJ))
	m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.scroll)
	assert.Equal(t, 2, m.logViewport.YOffset)

	m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, len(v.Rows)-m.logViewport.Height, m.scroll)

	m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, m.scroll)

	m.scroll = 5
	m.HandleKeyMsg(runes(KeyNextSession))
	assert.Equal(t, 0, m.scroll, "switching sessions resets the log")
}

func TestParseReferencePressure(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"   ", 0, false},
		{"1013.25", 1013.25, false},
		{" 998 ", 998, false},
		{"0", 0, false},
		{"-5", -5, false},
		{"abc", 0, true},
		{"10hPa", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReferencePressure(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
