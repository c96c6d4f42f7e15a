package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of groundctl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd.OutOrStdout(), versionShort, machineMode)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	AddJSONFlag(versionCmd)
}

type versionOutput struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
	OSArch  string `json:"os_arch"`
}

func buildInfo() versionOutput {
	return versionOutput{
		Version: version,
		Commit:  commit,
		Built:   date,
		Go:      runtime.Version(),
		OSArch:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// printVersion writes the build info. --short wins over --json.
func printVersion(w io.Writer, short, asJSON bool) error {
	if short {
		_, err := fmt.Fprintln(w, version)
		return err
	}
	info := buildInfo()
	if asJSON {
		return WriteJSONSuccess(w, info)
	}

	fmt.Fprintf(w, "groundctl %s\n", formatVersion(info.Version))
	fmt.Fprintf(w, "  commit:  %s\n", info.Commit)
	fmt.Fprintf(w, "  built:   %s\n", info.Built)
	fmt.Fprintf(w, "  go:      %s (%s)\n", info.Go, info.OSArch)
	return nil
}

// formatVersion adds a 'v' prefix to release versions.
func formatVersion(v string) string {
	if v == "" || v == "dev" || v[0] == 'v' {
		return v
	}
	return "v" + v
}

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// GetVersion returns the current version string.
func GetVersion() string {
	return version
}
