package monitor

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/groundctl/groundctl/internal/errors"
)

// ViewMode is what the keyboard currently drives.
type ViewMode int

const (
	ViewNormal ViewMode = iota
	ViewPressureInput
	ViewConfirmLaunch
)

// Key bindings as constants for consistency.
const (
	KeyQuit         = "q"
	KeyQuitAlt      = "ctrl+c"
	KeyRefresh      = "r"
	KeyPrevSession  = "["
	KeyNextSession  = "]"
	KeyPressure     = "p"
	KeyLaunch       = "L"
	KeyConfirm      = "y"
	KeyDecline      = "n"
	KeyScrollUp     = "up"
	KeyScrollUpK    = "k"
	KeyScrollDown   = "down"
	KeyScrollDownJ  = "j"
	KeyScrollTop    = "home"
	KeyScrollBottom = "end"
	KeySubmit       = "enter"
	KeyCollapse     = "esc"
	KeyToggleHelp   = "?"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyQuitAlt {
		m.quitting = true
		return true, tea.Quit
	}

	switch m.viewMode {
	case ViewPressureInput:
		return m.handlePressureKey(key)
	case ViewConfirmLaunch:
		return m.handleConfirmKey(key)
	}

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		m.dash.Refresh()
		return true, nil

	case KeyPrevSession:
		m.scroll = 0
		m.dash.PrevSession()
		return true, nil

	case KeyNextSession:
		m.scroll = 0
		m.dash.NextSession()
		return true, nil

	case KeyPressure:
		m.viewMode = ViewPressureInput
		m.inputErr = ""
		m.input.SetValue("")
		if m.view.ReferencePressure > 0 {
			m.input.SetValue(strconv.FormatFloat(m.view.ReferencePressure, 'f', -1, 64))
		}
		m.input.CursorEnd()
		return true, m.input.Focus()

	case KeyLaunch:
		if m.gate == nil || m.launching {
			return true, nil
		}
		if err := m.gate.RequestConfirmation(); err != nil {
			m.launchResult = errors.Summary(err)
			m.launchOK = false
			return true, nil
		}
		m.viewMode = ViewConfirmLaunch
		return true, nil

	case KeyScrollUp, KeyScrollUpK:
		if m.scroll > 0 {
			m.scroll--
		}
		m.syncLog()
		return true, nil

	case KeyScrollDown, KeyScrollDownJ:
		m.scroll++
		m.syncLog()
		return true, nil

	case KeyScrollTop:
		m.scroll = 0
		m.syncLog()
		return true, nil

	case KeyScrollBottom:
		m.scroll = len(m.view.Rows)
		m.syncLog()
		return true, nil
	}

	return false, nil
}

func (m *Model) handlePressureKey(key string) (bool, tea.Cmd) {
	switch key {
	case KeyCollapse:
		m.viewMode = ViewNormal
		m.inputErr = ""
		m.input.Blur()
		return true, nil

	case KeySubmit:
		v, err := ParseReferencePressure(m.input.Value())
		if err != nil {
			m.inputErr = err.Error()
			return true, nil
		}
		m.dash.SetReferencePressure(v)
		m.viewMode = ViewNormal
		m.inputErr = ""
		m.input.Blur()
		return true, nil
	}
	return false, nil
}

func (m *Model) handleConfirmKey(key string) (bool, tea.Cmd) {
	switch key {
	case KeyConfirm:
		m.viewMode = ViewNormal
		m.launching = true
		m.launchResult = ""
		return true, m.confirmLaunchCmd()

	case KeyDecline, KeyCollapse, KeyQuit:
		m.gate.Cancel()
		m.viewMode = ViewNormal
		return true, nil
	}
	// Swallow everything else so a stray key can't act while armed.
	return true, nil
}

// ParseReferencePressure parses operator input. Empty input means 0
// (altitude disabled).
func ParseReferencePressure(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrSettings, "Not a number: "+s, "")
	}
	return v, nil
}
