// Package ui provides terminal output helpers for groundctl's one-shot
// commands.
//
// The full-screen dashboard lives in the monitor package; this package
// covers everything printed to a plain terminal: tables of events and
// sessions, sparklines, a spinner for requests in flight, the banner shown
// by long-running commands, and the yes/no prompt used before a launch.
//
// # Color Scheme
//
// Semantic colors are ANSI codes so output follows the terminal theme:
//
//	ColorSuccess   (green)  - Accepted commands
//	ColorError     (red)    - Failures and rejections
//	ColorWarning   (yellow) - Warnings
//	ColorInfo      (cyan)   - Selected items
//	ColorMuted     (gray)   - Secondary text, timing info
//
// # Spinner Usage
//
//	s := ui.NewSpinner(os.Stdout, "Sending launch command")
//	s.Start()
//	// ... do work ...
//	s.Success("Status: 200 — OK") // or s.Fail(msg)
//
// # Prompts
//
// Confirm wraps a Huh confirm form. Callers check IsInteractive first and
// require an explicit flag when there is no terminal to ask.
package ui
