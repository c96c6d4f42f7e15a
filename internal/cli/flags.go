package cli

import (
	"fmt"
	"time"

	"github.com/groundctl/groundctl/internal/errors"
	"github.com/spf13/cobra"
)

// AddSessionFlag registers --session/-s on a command.
func AddSessionFlag(cmd *cobra.Command, session *string, usage string) {
	cmd.Flags().StringVarP(session, "session", "s", "", usage)
}

// AddJSONFlag registers --json, which switches output to the JSON envelope.
func AddJSONFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&machineMode, "json", false, "output JSON for scripts")
}

// ParseInterval parses a duration flag and enforces a lower bound.
// Returns def if the flag is empty.
func ParseInterval(flag string, def, minimum time.Duration) (time.Duration, error) {
	if flag == "" {
		return def, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 500ms, 2s, or 1m.")
	}
	if d < minimum {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", d),
			fmt.Sprintf("Use at least %s.", minimum))
	}
	return d, nil
}
