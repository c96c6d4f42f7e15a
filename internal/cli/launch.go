package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/groundctl/groundctl/internal/command"
	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/ui"
)

type launchOptions struct {
	// Yes skips the confirmation prompt.
	Yes  bool
	JSON bool
	// Interactive is true when a prompt can be shown.
	Interactive bool
	// Confirm asks the operator. Defaults to ui.Confirm.
	Confirm func(title, description string) (bool, error)
	// Spinner shows progress while the request is outstanding.
	Spinner bool
}

type launchOutput struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// runLaunch arms the gate, asks for confirmation, and sends one launch
// request. A non-2xx or failed request is returned as an error.
func runLaunch(ctx context.Context, out io.Writer, gate *command.Gate, opts launchOptions) error {
	if !opts.Yes && !opts.Interactive {
		return errors.New(errors.ErrCommand,
			"Launch needs confirmation but there is no terminal to ask on",
			"Pass --yes to confirm non-interactively.")
	}
	if opts.Confirm == nil {
		opts.Confirm = ui.Confirm
	}

	if err := gate.RequestConfirmation(); err != nil {
		return err
	}
	if !opts.Yes {
		ok, err := opts.Confirm("Send LAUNCH command?", "This cannot be undone.")
		if err != nil {
			gate.Cancel()
			return errors.WrapWithCode(err, errors.ErrCommand, "Confirmation prompt failed", "Pass --yes to skip the prompt.")
		}
		if !ok {
			gate.Cancel()
			fmt.Fprintln(out, "Launch cancelled.")
			return nil
		}
	}

	var spinner *ui.Spinner
	if opts.Spinner && !opts.JSON {
		spinner = ui.NewSpinner(out, "Sending launch command")
		spinner.Start()
	}

	res, err := gate.Confirm(ctx)
	if err != nil {
		if spinner != nil {
			spinner.Stop()
		}
		return err
	}

	if !res.OK() {
		if spinner != nil {
			spinner.Fail(res.String())
		}
		return errors.New(errors.ErrCommand, res.String(), "Check the launch pad and the backend logs.")
	}

	if opts.JSON {
		return WriteJSONSuccess(out, launchOutput{StatusCode: res.StatusCode, Message: res.Message})
	}
	if spinner != nil {
		spinner.Success(res.String())
		return nil
	}
	fmt.Fprintf(out, "%s %s\n", ui.SymbolSuccess, res.String())
	return nil
}
