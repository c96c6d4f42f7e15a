package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/groundctl/groundctl/internal/api"
	"github.com/groundctl/groundctl/internal/config"
	"github.com/groundctl/groundctl/internal/logger"
	"github.com/groundctl/groundctl/internal/settings"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile         string
	serverFlag      string
	metricsAddrFlag string
	verboseFlag     bool
)

// rootCmd opens the dashboard when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "groundctl",
	Short: "Ground station dashboard for rocket telemetry",
	Long: `groundctl watches live rocket telemetry and sends launch commands.

Run without a subcommand to open the dashboard. The one-shot commands
(events, sessions, launch, settings, simulate) talk to the same backend.

Configuration is read from .groundctl.yaml in the current directory or a
parent, then ~/.config/groundctl/config.yaml. Environment variables with the
GROUNDCTL_ prefix override both, and flags override everything.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, monitorOptions{})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .groundctl.yaml, then ~/.config/groundctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "backend base URL (e.g. http://localhost:8000)")
	rootCmd.PersistentFlags().StringVar(&metricsAddrFlag, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9109)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log debug output to stderr")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if MachineMode() {
			_ = WriteJSONFromError(os.Stdout, err)
			os.Exit(1)
		}
		if isUnknownCommandError(err) {
			if name := extractUnknownCommand(err); name != "" {
				fmt.Fprintf(os.Stderr, "Unknown command %q. Run 'groundctl --help' to see what's available.\n", name)
				os.Exit(1)
			}
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if serverFlag != "" {
		cfg.Server.URL = serverFlag
	}
	if metricsAddrFlag != "" {
		cfg.Metrics.Addr = metricsAddrFlag
	}
}

// commandLogger is the stderr logger for one-shot commands. Only warnings
// and errors are shown unless --verbose is set.
func commandLogger(cfg *config.Config) logger.Logger {
	level := "warn"
	if verboseFlag {
		level = "debug"
	}
	return logger.New(logger.Options{
		Writer: os.Stderr,
		Level:  level,
		Format: cfg.Log.Format,
	})
}

func newClient(cfg *config.Config, log logger.Logger) (*api.Client, error) {
	return api.New(api.Options{
		BaseURL: cfg.Server.URL,
		Timeout: cfg.Server.RequestTimeout,
		Logger:  log,
	})
}

// settingsStore is the calibration file in the global config directory.
func settingsStore() *settings.Store {
	return settings.NewStore(filepath.Join(config.GlobalDir(), settings.FileName))
}

// isUnknownCommandError checks if the error is from cobra not finding a command or flag.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the quoted name out of cobra's
// `unknown command "foo" for "groundctl"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
