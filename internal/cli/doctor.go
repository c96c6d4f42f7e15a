package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/groundctl/groundctl/internal/config"
	"github.com/groundctl/groundctl/internal/doctor"
	"github.com/groundctl/groundctl/internal/stream"
	"github.com/groundctl/groundctl/internal/ui"
	"github.com/spf13/cobra"
)

var doctorFix bool

// doctorTimeout bounds the whole backend round of checks.
const doctorTimeout = 15 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, backend and settings problems",
	Long: `Run diagnostic checks and print a report.

Checks the config file, that the backend answers the sessions and events
endpoints, that the live stream accepts a connection, and that the
calibration and log file locations are usable.

Examples:
  groundctl doctor
  groundctl doctor --fix
  groundctl doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		checks := collectChecks()
		ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
		defer cancel()
		return runDoctor(ctx, cmd.OutOrStdout(), checks, doctorOptions{Fix: doctorFix, JSON: machineMode})
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	AddJSONFlag(doctorCmd)
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

type doctorOptions struct {
	Fix  bool
	JSON bool
}

// collectChecks builds every check from whatever config could be resolved.
// A broken config still yields the config checks, which report it.
func collectChecks() []doctor.Check {
	checks := doctor.NewConfigChecks(cfgFile)

	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
		applyFlagOverrides(cfg)
	}

	client, err := newClient(cfg, commandLogger(cfg))
	if err == nil {
		var dialer stream.Dialer
		streamURL := ""
		if cfg.Stream.Mode != config.StreamModePoll {
			dialer = stream.WebSocketDialer{Header: client.Header(), HandshakeTimeout: cfg.Server.RequestTimeout}
			streamURL = client.StreamURL("")
		}
		checks = append(checks, doctor.NewBackendChecks(client, cfg.Server.URL, dialer, streamURL)...)
	}

	checks = append(checks, doctor.NewSettingsChecks(settingsStore(), config.ExpandTilde(cfg.Log.File))...)
	return checks
}

// runDoctor runs checks, optionally fixes what it can, and reports.
func runDoctor(ctx context.Context, out io.Writer, checks []doctor.Check, opts doctorOptions) error {
	results := doctor.RunAllParallel(ctx, checks)

	if opts.Fix {
		results = attemptFixes(ctx, checks, results)
	}

	if opts.JSON {
		return outputDoctorJSON(out, checks, results)
	}
	outputDoctorText(out, checks, results, opts.Fix)
	return nil
}

// attemptFixes tries to fix issues where possible.
func attemptFixes(ctx context.Context, checks []doctor.Check, results []doctor.CheckResult) []doctor.CheckResult {
	for i, result := range results {
		if result.Fixable && (result.Status == doctor.StatusFail || result.Status == doctor.StatusWarn) {
			if err := checks[i].Fix(); err == nil {
				// Re-run the check to see if it's fixed
				results[i] = checks[i].Run(ctx)
			}
		}
	}
	return results
}

// groupResults pairs categories with their results in report order.
func groupResults(checks []doctor.Check, results []doctor.CheckResult) []CategoryOutput {
	grouped := make(map[string][]doctor.CheckResult)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], results[i])
	}

	out := make([]CategoryOutput, 0, len(grouped))
	for _, cat := range doctor.Categories {
		if rs, ok := grouped[cat]; ok {
			out = append(out, CategoryOutput{Name: cat, Results: rs})
		}
	}
	return out
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	counts := doctor.CountByStatus(results)
	output := DoctorOutput{
		Categories: groupResults(checks, results),
		Summary: SummaryOutput{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			Fixable:  doctor.FixableCount(results),
			AllClear: !doctor.HasIssues(results),
		},
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(out io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("groundctl diagnostic report"))
	fmt.Fprintln(out)

	for _, category := range groupResults(checks, results) {
		fmt.Fprintln(out, headerStyle.Render(category.Name))
		for _, result := range category.Results {
			renderCheckResult(out, result)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, strings.Repeat("━", 60))
	fmt.Fprintln(out)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(out, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(out, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))

		if doctor.FixableCount(results) > 0 && !fixed {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Run with %s to attempt automatic fixes where possible.\n",
				mutedStyle.Render("--fix"))
		}
	}
	fmt.Fprintln(out)
}

// renderCheckResult renders a single check result.
func renderCheckResult(out io.Writer, result doctor.CheckResult) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol = ui.SymbolComplete
		style = lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	case doctor.StatusWarn:
		symbol = ui.SymbolComplete // Still shows as done, but with warning styling
		style = lipgloss.NewStyle().Foreground(ui.ColorWarning)
	default:
		symbol = ui.SymbolFail
		style = lipgloss.NewStyle().Foreground(ui.ColorError)
	}

	fmt.Fprintf(out, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(out, "    %s\n", mutedStyle.Render(line))
		}
	}
}
