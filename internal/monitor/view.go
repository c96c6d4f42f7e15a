package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/groundctl/groundctl/internal/dashboard"
)

// Event log column widths.
const (
	colTimestamp = 12
	colSession   = 18
	colNumber    = 11
	colReceived  = 8
)

// renderDashboard renders the full screen: header, optional error bar and
// status line, graphs, event log, footer.
func (m Model) renderDashboard() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	if bar := m.errorBar(); bar != "" {
		sections = append(sections, bar)
	}
	if status := m.statusLine(); status != "" {
		sections = append(sections, status)
	}
	if graphs := m.renderGraphs(); graphs != "" {
		sections = append(sections, graphs)
	}
	sections = append(sections, "", m.renderLogHeader())
	if len(m.view.Rows) == 0 {
		sections = append(sections, MutedStyle.Render("  no events for this session yet"))
	} else {
		sections = append(sections, m.logViewport.View())
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	v := m.view
	parts := []string{TitleStyle.Render("GROUNDCTL")}

	session := "no session"
	if v.Selected != "" {
		session = v.Selected
		for i, id := range v.Sessions {
			if id == v.Selected {
				session = fmt.Sprintf("%s (%d/%d)", v.Selected, i+1, len(v.Sessions))
				break
			}
		}
	}
	parts = append(parts, ValueStyle.Render(session))
	parts = append(parts, StatusBadge(v.Status, m.spinnerFrame))

	if v.HasUpdate {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(StalenessColor(v.SecondsSinceUpdate)).
			Render(fmt.Sprintf("updated %ds ago", v.SecondsSinceUpdate)))
	} else {
		parts = append(parts, MutedStyle.Render("waiting for data"))
	}

	count := fmt.Sprintf("%d events", len(v.Rows))
	if v.NewEventCount > 0 {
		count += fmt.Sprintf(" (+%d new)", v.NewEventCount)
	}
	parts = append(parts, LabelStyle.Render(count))

	return HeaderStyle.Width(m.contentWidth()).Render(strings.Join(parts, "  "))
}

// errorBar joins the current errors into one strip, or returns "".
func (m Model) errorBar() string {
	var msgs []string
	if m.view.StreamError != "" {
		msgs = append(msgs, "stream: "+m.view.StreamError)
	}
	if m.view.FetchError != "" {
		msgs = append(msgs, "sessions: "+m.view.FetchError)
	}
	if m.view.SaveError != "" {
		msgs = append(msgs, "settings: "+m.view.SaveError)
	}
	if len(msgs) == 0 {
		return ""
	}
	return ErrorBarStyle.Width(m.contentWidth()).Render("✗ " + strings.Join(msgs, " | "))
}

// statusLine shows the active prompt or the last launch result.
func (m Model) statusLine() string {
	switch m.viewMode {
	case ViewPressureInput:
		line := m.input.View()
		if m.inputErr != "" {
			line += "  " + LaunchFailStyle.Render(m.inputErr)
		}
		return line
	case ViewConfirmLaunch:
		return PromptStyle.Render("Send LAUNCH command? [y/N]")
	}

	if m.launching {
		return PromptStyle.Render("Launching...")
	}
	if m.launchResult != "" {
		if m.launchOK {
			return LaunchOKStyle.Render(m.launchResult)
		}
		return LaunchFailStyle.Render(m.launchResult)
	}
	return ""
}

// graphCount is how many series are drawn.
func (m Model) graphCount() int {
	if len(m.view.Rows) == 0 {
		return 0
	}
	if m.view.AltitudeEnabled {
		return 3
	}
	return 2
}

// graphLines is the vertical space the graphs take.
func (m Model) graphLines() int {
	n := m.graphCount()
	if n == 0 {
		return 0
	}
	if m.LayoutMode() == LayoutStandard {
		return n * (graphHeight + 2)
	}
	return n
}

func (m Model) renderGraphs() string {
	if m.graphCount() == 0 {
		return ""
	}
	series := SeriesFromRows(m.view.Rows)
	latest, _ := m.view.Latest()

	type graph struct {
		title string
		value string
		data  []float64
		color lipgloss.Color
	}
	graphs := []graph{
		{"Velocity", formatValue(latest.Velocity, "m/s"), series.Velocity, ColorVelocity},
		{"Air pressure", formatValue(latest.AirPressure, "hPa"), series.Pressure, ColorPressure},
	}
	if m.view.AltitudeEnabled {
		alt := "-"
		if latest.HasAltitude {
			alt = formatValue(latest.Altitude, "m")
		}
		graphs = append(graphs, graph{"Altitude", alt, series.Altitude, ColorAltitude})
	}

	width := m.contentWidth()
	var lines []string
	if m.LayoutMode() == LayoutMinimal {
		for _, g := range graphs {
			label := LabelStyle.Render(fmt.Sprintf("%-13s", g.title))
			value := ValueStyle.Render(fmt.Sprintf("%14s ", g.value))
			sparkWidth := width - 28
			lines = append(lines, label+value+RenderMiniSparkline(g.data, sparkWidth, g.color))
		}
		return strings.Join(lines, "\n")
	}

	for _, g := range graphs {
		lines = append(lines, SectionHeader(g.title, g.value, width))
		graph := RenderBrailleSparkline(g.data, width-4, graphHeight, g.color)
		graphRows := strings.Split(graph, "\n")
		for i := 0; i < graphHeight; i++ {
			row := ""
			if i < len(graphRows) {
				row = graphRows[i]
			}
			lines = append(lines, SectionContentLine(row, width))
		}
		lines = append(lines, SectionFooter(width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogHeader() string {
	cols := []string{
		padRight("TIMESTAMP", colTimestamp),
		padRight("SESSION", colSession),
		padLeft("VELOCITY", colNumber),
		padLeft("PRESSURE", colNumber),
	}
	if m.view.AltitudeEnabled {
		cols = append(cols, padLeft("ALTITUDE", colNumber))
	}
	cols = append(cols, padLeft("RECEIVED", colReceived))
	return LogHeaderStyle.Render("  " + strings.Join(cols, " "))
}

// renderLogRows renders every buffered row; the viewport scrolls them.
func (m Model) renderLogRows() string {
	lines := make([]string, 0, len(m.view.Rows))
	for _, r := range m.view.Rows {
		lines = append(lines, m.renderLogRow(r))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogRow(r dashboard.Row) string {
	cols := []string{
		padRight(truncate(r.Timestamp, colTimestamp), colTimestamp),
		padRight(truncate(r.Identifier, colSession), colSession),
		padLeft(formatNumber(r.Velocity), colNumber),
		padLeft(formatNumber(r.AirPressure), colNumber),
	}
	if m.view.AltitudeEnabled {
		alt := "-"
		if r.HasAltitude {
			alt = formatNumber(r.Altitude)
		}
		cols = append(cols, padLeft(alt, colNumber))
	}
	cols = append(cols, padLeft(formatReceived(r.SaveDatetime), colReceived))

	line := strings.Join(cols, " ")
	if r.New {
		return NewRowStyle.Render("▸ " + line)
	}
	return RowStyle.Render("  " + line)
}

func (m Model) renderFooter() string {
	hints := "q quit  [ ] session  p pressure  L launch  r refresh  ? help"
	s := m.view.Stats
	stats := fmt.Sprintf("msgs %d  p50 %s  p95 %s  reconnects %d",
		s.Messages, formatDuration(s.P50), formatDuration(s.P95), s.Reconnects)

	width := m.contentWidth()
	gap := width - lipgloss.Width(hints) - lipgloss.Width(stats) - 2
	if gap < 2 {
		return FooterStyle.Render(hints)
	}
	return FooterStyle.Render(hints + strings.Repeat(" ", gap) + stats)
}

func formatValue(v float64, unit string) string {
	return fmt.Sprintf("%s %s", formatNumber(v), unit)
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatReceived(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("15:04:05")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func padLeft(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}
