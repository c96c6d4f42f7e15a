package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Title   string // Defaults to "groundctl"
	Version string
	Server  string // Backend URL
	Session string // Optional session id
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders the banner printed by long-running commands.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().Foreground(ColorBrand).Bold(true)
	versionStyle := lipgloss.NewStyle().Foreground(ColorAccent)
	labelStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	dividerStyle := lipgloss.NewStyle().Foreground(ColorBorder)

	title := info.Title
	if title == "" {
		title = "groundctl"
	}

	var out strings.Builder
	out.WriteString(titleStyle.Render(title))
	if info.Version != "" {
		out.WriteString(" " + versionStyle.Render(info.Version))
	}
	out.WriteString("\n")

	if info.Server != "" {
		out.WriteString(labelStyle.Render("server  ") + info.Server + "\n")
	}
	if info.Session != "" {
		out.WriteString(labelStyle.Render("session ") + info.Session + "\n")
	}

	out.WriteString(dividerStyle.Render(strings.Repeat("━", HeaderWidth)))
	out.WriteString("\n")
	return out.String()
}

// PrintHeader writes the styled header to w.
func PrintHeader(w io.Writer, info HeaderInfo) {
	fmt.Fprint(w, RenderHeader(info))
}
