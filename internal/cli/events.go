package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/telemetry"
	"github.com/groundctl/groundctl/internal/ui"
)

// sparklineWidth matches the header divider.
const sparklineWidth = ui.HeaderWidth

type eventsClient interface {
	FetchEvents(ctx context.Context, identifier string) ([]telemetry.Event, error)
	FetchSessions(ctx context.Context) ([]string, error)
}

type eventsOptions struct {
	Session string
	JSON    bool
	// ReferencePressure enables the altitude column when positive.
	ReferencePressure float64
	ScaleHeight       float64
	Server            string
}

type eventJSON struct {
	telemetry.Event
	Altitude *float64 `json:"altitude,omitempty"`
}

type eventsOutput struct {
	Session           string      `json:"session"`
	ReferencePressure float64     `json:"reference_pressure,omitempty"`
	Events            []eventJSON `json:"events"`
}

// runEvents prints the latest events for one session, newest first.
func runEvents(ctx context.Context, out io.Writer, client eventsClient, opts eventsOptions) error {
	session := opts.Session
	if session == "" {
		ids, err := client.FetchSessions(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return errors.New(errors.ErrFetch,
				"No sessions yet",
				"Start a flight or run 'groundctl simulate' to create one.")
		}
		session = ids[0]
	}

	events, err := client.FetchEvents(ctx, session)
	if err != nil {
		return err
	}

	var altitude ui.AltitudeFunc
	if opts.ReferencePressure > 0 {
		deriver := telemetry.NewDeriver(opts.ScaleHeight)
		altitude = func(e telemetry.Event) (float64, bool) {
			return deriver.Altitude(e.AirPressure, opts.ReferencePressure)
		}
	}

	if opts.JSON {
		payload := eventsOutput{
			Session:           session,
			ReferencePressure: opts.ReferencePressure,
			Events:            make([]eventJSON, 0, len(events)),
		}
		for _, e := range events {
			row := eventJSON{Event: e}
			if altitude != nil {
				if v, ok := altitude(e); ok {
					row.Altitude = &v
				}
			}
			payload.Events = append(payload.Events, row)
		}
		return WriteJSONSuccess(out, payload)
	}

	ui.PrintHeader(out, ui.HeaderInfo{Server: opts.Server, Session: session})
	fmt.Fprintln(out, ui.RenderEventsTable(events, altitude))
	if len(events) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "velocity  %s\n", ui.RenderSparkline(series(events, velocityOf), sparklineWidth, ui.ColorAccent))
		fmt.Fprintf(out, "pressure  %s\n", ui.RenderSparkline(series(events, pressureOf), sparklineWidth, ui.ColorBrand))
	}
	return nil
}

func velocityOf(e telemetry.Event) float64 { return e.Velocity }
func pressureOf(e telemetry.Event) float64 { return e.AirPressure }

// series returns the values oldest first so sparklines read left to right.
func series(events []telemetry.Event, value func(telemetry.Event) float64) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[len(events)-1-i] = value(e)
	}
	return out
}
