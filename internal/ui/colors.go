package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors use ANSI codes so one-shot command output respects the
// terminal's own theme.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Brand colors, shared with the dashboard.
const (
	ColorBrand  lipgloss.Color = "#FF2E97"
	ColorAccent lipgloss.Color = "#00FFFF"
	ColorBorder lipgloss.Color = "#2A2A4A"
)

// GradientColors is the spinner's color cycle.
var GradientColors = []lipgloss.Color{
	"#FF2E97",
	"#BF40FF",
	"#00FFFF",
	"#39FF14",
}
