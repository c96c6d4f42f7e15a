// Package cli implements the groundctl command-line interface.
//
// Each Cobra command loads config, builds its dependencies, and hands off
// to a run function that takes a context, a writer, and narrow interfaces
// so tests can drive it against a fake backend.
//
// # Command Structure
//
// The root command "groundctl" opens the dashboard. Subcommands:
//
//	groundctl monitor                   - Live dashboard (same as no subcommand)
//	groundctl events                    - Print the latest events once
//	groundctl sessions                  - List sessions
//	groundctl launch                    - Send the launch command
//	groundctl settings show             - Show the stored calibration
//	groundctl settings set-reference N  - Set the reference pressure in hPa
//	groundctl simulate                  - Post synthetic telemetry
//	groundctl doctor                    - Diagnose config and backend problems
//	groundctl version                   - Print build information
//
// # Output
//
// One-shot commands write to the command's output stream. With --json they
// write a JSONEnvelope instead, and Execute renders failures the same way.
// The dashboard owns the terminal, so it logs to a rotating file rather
// than stderr.
//
// # Flag Handling
//
// Global flags (--config, --server, --metrics-addr, --verbose) are defined
// on the root command. --server and --metrics-addr override whatever the
// config file and GROUNDCTL_ environment variables resolved.
package cli
