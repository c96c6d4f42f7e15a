package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/groundctl/groundctl/internal/dashboard"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	// Graph colors per series
	ColorVelocity = lipgloss.Color("#00FFFF")
	ColorPressure = lipgloss.Color("#BF40FF")
	ColorAltitude = lipgloss.Color("#39FF14")
)

// StaleAfterSeconds is when the "updated" text turns amber.
const StaleAfterSeconds = 5

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// ErrorBarStyle is the persistent, non-blocking error strip.
	ErrorBarStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorCritical).
			Padding(0, 1)

	// NewRowStyle highlights rows that arrived with the latest update.
	NewRowStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy).
			Bold(true)

	RowStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	LogHeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Bold(true)

	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	LaunchOKStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	LaunchFailStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)
)

// Status badge glyphs
const (
	SymbolLive       = "◉"
	SymbolConnecting = "◐"
	SymbolOffline    = "◌"
)

// ConnectingSpinnerFrames animate the CONNECTING badge.
var ConnectingSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// StatusColor returns the badge color for a connection status.
func StatusColor(s dashboard.Status) lipgloss.Color {
	switch s {
	case dashboard.StatusLive:
		return ColorHealthy
	case dashboard.StatusConnecting:
		return ColorWarning
	default:
		return ColorCritical
	}
}

// StatusBadge renders the connection badge. frame animates CONNECTING.
func StatusBadge(s dashboard.Status, frame int) string {
	symbol := SymbolOffline
	switch s {
	case dashboard.StatusLive:
		symbol = SymbolLive
	case dashboard.StatusConnecting:
		symbol = ConnectingSpinnerFrames[frame%len(ConnectingSpinnerFrames)]
	}
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Bold(true).Render(symbol + " " + string(s))
}

// StalenessColor colors the "updated Ns ago" text.
func StalenessColor(seconds int) lipgloss.Color {
	if seconds >= StaleAfterSeconds {
		return ColorWarning
	}
	return ColorTextSecondary
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}
	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorVelocity).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	return borderStyle.Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders a content line with left and right borders, padded to width.
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	padding := width - 4 - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
