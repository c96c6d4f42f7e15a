package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Command accepted
	SymbolFail     = "✗" // Command failed or rejected
	SymbolPending  = "○" // Not yet started
	SymbolProgress = "◐" // In progress
	SymbolComplete = "●" // Done
	SymbolSelected = "▸" // Current session
)
