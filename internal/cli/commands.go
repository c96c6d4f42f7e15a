package cli

import (
	"os"
	"os/signal"
	"strconv"

	"github.com/groundctl/groundctl/internal/command"
	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/simulate"
	"github.com/groundctl/groundctl/internal/ui"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	monitorSessionFlag   string
	monitorPollFlag      bool
	eventsSessionFlag    string
	launchYesFlag        bool
	simulateSessionFlag  string
	simulateIntervalFlag string
	simulateCountFlag    int
	simulateSeedFlag     int64
	simulateQuietFlag    bool
)

// monitorCmd opens the live dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Open the live telemetry dashboard",
	Long: `Open the full-screen dashboard for the selected session.

The dashboard streams events over a WebSocket (or polls, with --poll or
stream.mode: poll), derives altitude from the stored reference pressure,
and can send the launch command after confirmation.

Keys: [ and ] switch session, p sets the reference pressure, L launches,
r refreshes, ? shows help, q quits.

Examples:
  groundctl monitor
  groundctl monitor --session flight-7
  groundctl monitor --poll --server http://pad.local:8000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, monitorOptions{Session: monitorSessionFlag, Poll: monitorPollFlag})
	},
}

// eventsCmd prints the latest events once
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the latest events for a session",
	Long: `Fetch the latest events for a session and print them newest first.

Without --session the first session the backend lists is used. Altitude is
shown when a reference pressure is set (see 'groundctl settings').

Examples:
  groundctl events
  groundctl events --session flight-7
  groundctl events --json | jq '.data.events[0]'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := commandLogger(cfg)
		client, err := newClient(cfg, log)
		if err != nil {
			return err
		}
		ref, err := settingsStore().ReferencePressure()
		if err != nil {
			log.Warn("altitude disabled: %v", errors.Summary(err))
			ref = 0
		}
		return runEvents(cmd.Context(), cmd.OutOrStdout(), client, eventsOptions{
			Session:           eventsSessionFlag,
			JSON:              machineMode,
			ReferencePressure: ref,
			ScaleHeight:       cfg.Telemetry.ScaleHeight,
			Server:            cfg.Server.URL,
		})
	},
}

// sessionsCmd lists the backend's sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List telemetry sessions",
	Long: `List the session identifiers the backend knows about, newest first.

The marked session is the one the dashboard opens by default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg, commandLogger(cfg))
		if err != nil {
			return err
		}
		return runSessions(cmd.Context(), cmd.OutOrStdout(), client, machineMode)
	},
}

// launchCmd sends the launch command
var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Send the launch command",
	Long: `Send one launch command to the backend after confirmation.

The request is never retried. Use --yes in scripts where no prompt can be shown.

Examples:
  groundctl launch
  groundctl launch --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := commandLogger(cfg)
		client, err := newClient(cfg, log)
		if err != nil {
			return err
		}
		gate := command.NewGate(command.Options{
			Launcher: client,
			Timeout:  cfg.Command.Timeout,
			Logger:   log,
		})
		interactive := ui.IsInteractive()
		return runLaunch(cmd.Context(), cmd.OutOrStdout(), gate, launchOptions{
			Yes:         launchYesFlag,
			JSON:        machineMode,
			Interactive: interactive,
			Spinner:     interactive,
		})
	},
}

// settingsCmd groups the calibration commands
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change local settings",
	Long: `Show or change settings stored in ~/.config/groundctl/settings.yaml.

The reference pressure is the ground-level air pressure in hPa. Altitude is
derived from it and is hidden while it is unset.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettingsShow(cmd.OutOrStdout(), settingsStore(), machineMode)
	},
}

var settingsSetReferenceCmd = &cobra.Command{
	Use:   "set-reference <hPa>",
	Short: "Set the ground-level reference pressure",
	Long: `Set the reference pressure used for altitude. Pass 0 to clear it.

Examples:
  groundctl settings set-reference 1013.25
  groundctl settings set-reference 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetReference(cmd.OutOrStdout(), settingsStore(), args[0])
	},
}

// simulateCmd posts synthetic telemetry
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Post synthetic telemetry to the backend",
	Long: `Post a synthetic climbing flight to the backend, one event per interval.

Runs until interrupted unless --count is set. Useful for trying the
dashboard without a vehicle.

Examples:
  groundctl simulate
  groundctl simulate --interval 200ms --count 100
  groundctl simulate --session test-1 --seed 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, err := ParseInterval(simulateIntervalFlag, simulate.DefaultInterval, minSimulateInterval)
		if err != nil {
			return err
		}
		if simulateCountFlag < 0 {
			return errors.New(errors.ErrConfig,
				"--count can't be negative: "+strconv.Itoa(simulateCountFlag),
				"Use 0 to run until interrupted.")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := commandLogger(cfg)
		client, err := newClient(cfg, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		_, err = runSimulate(ctx, cmd.OutOrStdout(), client, log, simulateOptions{
			Session:  simulateSessionFlag,
			Interval: interval,
			Count:    simulateCountFlag,
			Seed:     simulateSeedFlag,
			Server:   cfg.Server.URL,
			Quiet:    simulateQuietFlag,
		})
		return err
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for groundctl.

Examples:
  # Bash
  groundctl completion bash > /etc/bash_completion.d/groundctl

  # Zsh
  groundctl completion zsh > "${fpath[1]}/_groundctl"

  # Fish
  groundctl completion fish > ~/.config/fish/completions/groundctl.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// monitor command flags
	AddSessionFlag(monitorCmd, &monitorSessionFlag, "session to open first")
	monitorCmd.Flags().BoolVar(&monitorPollFlag, "poll", false, "poll for events instead of streaming")

	// events command flags
	AddSessionFlag(eventsCmd, &eventsSessionFlag, "session to show (default: newest)")
	AddJSONFlag(eventsCmd)

	AddJSONFlag(sessionsCmd)

	// launch command flags
	launchCmd.Flags().BoolVarP(&launchYesFlag, "yes", "y", false, "skip the confirmation prompt")
	AddJSONFlag(launchCmd)

	AddJSONFlag(settingsShowCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetReferenceCmd)

	// simulate command flags
	AddSessionFlag(simulateCmd, &simulateSessionFlag, "session id to post under (default: sim-<unix time>)")
	simulateCmd.Flags().StringVar(&simulateIntervalFlag, "interval", "", "pause between events (default 500ms)")
	simulateCmd.Flags().IntVar(&simulateCountFlag, "count", 0, "stop after this many events (0 runs until interrupted)")
	simulateCmd.Flags().Int64Var(&simulateSeedFlag, "seed", 0, "random seed for a reproducible flight")
	simulateCmd.Flags().BoolVarP(&simulateQuietFlag, "quiet", "q", false, "print nothing but errors")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(completionCmd)
}
