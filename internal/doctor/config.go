package doctor

import (
	"context"
	"fmt"

	"github.com/groundctl/groundctl/internal/config"
)

// ConfigFileCheck reports which config file is in effect.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(_ context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", shortErr(err)),
			Suggestion: "Check the --config path and its permissions",
		}
	}

	if path == "" {
		// Defaults are a working setup for a local backend.
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file, using defaults",
			Suggestion: fmt.Sprintf("Create %s to point at a different backend", config.ConfigFileName),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

func (c *ConfigFileCheck) Fix() error {
	return nil // Nothing sensible to write without knowing the backend
}

// ConfigValidCheck loads and validates the resolved config.
type ConfigValidCheck struct {
	ConfigPath string
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return CategoryConfig }

func (c *ConfigValidCheck) Run(_ context.Context) CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %s", shortErr(err)),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Invalid config: %s", shortErr(err)),
			Suggestion: "Fix the fields named above, or remove them to use defaults",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config valid (server %s, %s mode)", cfg.Server.URL, cfg.Stream.Mode),
	}
}

func (c *ConfigValidCheck) Fix() error {
	return nil // Config issues require manual intervention
}

// NewConfigChecks returns all config-related checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigValidCheck{ConfigPath: configPath},
	}
}
