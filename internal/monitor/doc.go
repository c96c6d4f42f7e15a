// Package monitor implements the full-screen telemetry dashboard.
//
// The TUI is a Bubble Tea program (Model-Update-View) that renders the
// immutable views published by dashboard.Controller. It never touches the
// event buffer or the stream directly: keys are turned into controller
// commands (session switch, calibration, refresh) or Command Gate steps
// (launch), and the next published view is rendered.
//
// # Message Flow
//
//  1. waitForView blocks on Controller.Views() and returns a viewMsg
//  2. Update stores the view and waits for the next one
//  3. View renders header, error bar, sparklines and the event log
//
// # Layout
//
// The header shows the selected session, the connection badge
// (LIVE, CONNECTING, OFFLINE) and how long ago data last arrived. Below it
// are braille sparklines for velocity and air pressure, plus altitude when
// a reference pressure is set. The event log lists the buffered events
// newest first, with rows from the latest update highlighted.
//
// Terminals narrower than BreakpointCompact get single-row block
// sparklines instead of braille graphs.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	[ / ]       - Previous / next session
//	p           - Set reference pressure
//	L           - Launch (asks y/n first)
//	r           - Refresh sessions and reconnect
//	j/k, ↑/↓    - Scroll the event log
//	?           - Toggle help overlay
package monitor
