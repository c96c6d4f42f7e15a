package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/monitor"
	"github.com/groundctl/groundctl/internal/settings"
)

type settingsOutput struct {
	Path              string  `json:"path"`
	ReferencePressure float64 `json:"reference_pressure"`
	AltitudeEnabled   bool    `json:"altitude_enabled"`
}

func runSettingsShow(out io.Writer, store *settings.Store, asJSON bool) error {
	ref, err := store.ReferencePressure()
	if err != nil {
		return err
	}

	if asJSON {
		return WriteJSONSuccess(out, settingsOutput{
			Path:              store.Path(),
			ReferencePressure: ref,
			AltitudeEnabled:   ref > 0,
		})
	}

	fmt.Fprintf(out, "settings file       %s\n", store.Path())
	if ref > 0 {
		fmt.Fprintf(out, "reference pressure  %s hPa\n", formatPressure(ref))
	} else {
		fmt.Fprintln(out, "reference pressure  not set (altitude disabled)")
	}
	return nil
}

// runSetReference stores the ground-level calibration. Zero, negative and
// empty values clear it.
func runSetReference(out io.Writer, store *settings.Store, raw string) error {
	v, err := monitor.ParseReferencePressure(raw)
	if err != nil {
		return errors.New(errors.ErrSettings,
			fmt.Sprintf("'%s' isn't a pressure", raw),
			"Pass the ground-level pressure in hPa, e.g. 1013.25, or 0 to clear.")
	}

	v = settings.Sanitize(v)
	if err := store.SetReferencePressure(v); err != nil {
		return err
	}

	if v == 0 {
		fmt.Fprintln(out, "Reference pressure cleared. Altitude is disabled.")
		return nil
	}
	fmt.Fprintf(out, "Reference pressure set to %s hPa.\n", formatPressure(v))
	return nil
}

func formatPressure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
