package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/groundctl/groundctl/internal/settings"
)

// ReferencePressureCheck reads the stored calibration.
type ReferencePressureCheck struct {
	Store *settings.Store
}

func (c *ReferencePressureCheck) Name() string     { return "reference_pressure" }
func (c *ReferencePressureCheck) Category() string { return CategorySettings }

func (c *ReferencePressureCheck) Run(_ context.Context) CheckResult {
	ref, err := c.Store.ReferencePressure()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Settings unreadable: %s", shortErr(err)),
			Suggestion: fmt.Sprintf("Fix or delete %s", c.Store.Path()),
		}
	}
	if ref <= 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Reference pressure not set, altitude is disabled",
			Suggestion: "Run 'groundctl settings set-reference <hPa>' or press p in the dashboard",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Reference pressure %.2f hPa", ref),
	}
}

func (c *ReferencePressureCheck) Fix() error {
	return nil // Only the operator knows the ground-level pressure
}

// LogDirCheck verifies the dashboard can write its log file.
type LogDirCheck struct {
	LogFile string
}

func (c *LogDirCheck) Name() string     { return "log_dir" }
func (c *LogDirCheck) Category() string { return CategorySettings }

func (c *LogDirCheck) Run(_ context.Context) CheckResult {
	dir := filepath.Dir(c.LogFile)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Log directory %s does not exist yet", dir),
			Suggestion: "It is created on the first dashboard run, or with --fix",
			Fixable:    true,
		}
	}
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("Cannot access log directory: %v", err),
		}
	}
	if !info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s is not a directory", dir),
			Suggestion: "Set log.file to a path in a writable directory",
		}
	}

	probe, err := os.CreateTemp(dir, ".groundctl-doctor-*")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Log directory %s is not writable", dir),
			Suggestion: "Fix its permissions or set log.file elsewhere",
		}
	}
	probe.Close()
	_ = os.Remove(probe.Name())

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Log file: %s", c.LogFile),
	}
}

func (c *LogDirCheck) Fix() error {
	return os.MkdirAll(filepath.Dir(c.LogFile), 0o755)
}

// NewSettingsChecks returns the calibration and log checks.
func NewSettingsChecks(store *settings.Store, logFile string) []Check {
	return []Check{
		&ReferencePressureCheck{Store: store},
		&LogDirCheck{LogFile: logFile},
	}
}
