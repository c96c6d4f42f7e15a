package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/groundctl/groundctl/internal/sessions"
	"github.com/groundctl/groundctl/internal/ui"
)

type sessionsOutput struct {
	Sessions []string `json:"sessions"`
	Selected string   `json:"selected,omitempty"`
}

// runSessions lists known sessions. The one the dashboard would open first
// is marked.
func runSessions(ctx context.Context, out io.Writer, lister sessions.Lister, asJSON bool) error {
	reg := sessions.NewRegistry(lister)
	if _, err := reg.Refresh(ctx); err != nil {
		return err
	}

	ids := reg.IDs()
	if asJSON {
		if ids == nil {
			ids = []string{}
		}
		return WriteJSONSuccess(out, sessionsOutput{Sessions: ids, Selected: reg.Selected()})
	}

	fmt.Fprint(out, ui.RenderSessionsTable(ids, reg.Selected()))
	if len(ids) == 0 {
		fmt.Fprintln(out)
	}
	return nil
}
