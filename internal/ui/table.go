package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/groundctl/groundctl/internal/telemetry"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-interactive Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Nothing is focused in CLI output, so the cursor row looks like the rest.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a table string for one-shot command output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// AltitudeFunc derives the altitude for an event, if it is displayable.
type AltitudeFunc func(e telemetry.Event) (float64, bool)

// RenderEventsTable renders events newest first. The altitude column is
// shown only when altitude is non-nil.
func RenderEventsTable(events []telemetry.Event, altitude AltitudeFunc) string {
	if len(events) == 0 {
		return lipgloss.NewStyle().Foreground(ColorMuted).Render("No events")
	}

	columns := []TableColumn{
		{Title: "ID", Width: 6},
		{Title: "TIMESTAMP", Width: 12},
		{Title: "SESSION", Width: 18},
		{Title: "VELOCITY", Width: 10},
		{Title: "PRESSURE", Width: 10},
	}
	if altitude != nil {
		columns = append(columns, TableColumn{Title: "ALTITUDE", Width: 10})
	}
	columns = append(columns, TableColumn{Title: "RECEIVED", Width: 20})

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		row := []string{
			fmt.Sprintf("%d", e.ID),
			e.Timestamp,
			e.Identifier,
			fmt.Sprintf("%.2f", e.Velocity),
			fmt.Sprintf("%.2f", e.AirPressure),
		}
		if altitude != nil {
			alt := "-"
			if v, ok := altitude(e); ok {
				alt = fmt.Sprintf("%.2f", v)
			}
			row = append(row, alt)
		}
		received := "-"
		if !e.SaveDatetime.IsZero() {
			received = e.SaveDatetime.Local().Format("2006-01-02 15:04:05")
		}
		row = append(row, received)
		rows = append(rows, row)
	}

	return RenderSimpleTable(columns, rows)
}

// RenderSessionsTable lists session ids, marking the selected one.
func RenderSessionsTable(ids []string, selected string) string {
	if len(ids) == 0 {
		return lipgloss.NewStyle().Foreground(ColorMuted).Render("No sessions")
	}

	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorInfo)
	var b strings.Builder
	for i, id := range ids {
		marker := "  "
		line := padRight(fmt.Sprintf("%d.", i+1), 5) + id
		if id == selected {
			marker = SymbolSelected + " "
			line = selectedStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}
	return b.String()
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
