package config

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"time"

	"github.com/groundctl/groundctl/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but groundctl only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade groundctl or lower the version field.")
	}

	checks := []struct {
		section string
		fn      func() error
	}{
		{"server", func() error { return validateServer(cfg.Server) }},
		{"stream", func() error { return validateStream(cfg.Stream) }},
		{"sessions", func() error { return validatePositive("sessions.poll_interval", cfg.Sessions.PollInterval) }},
		{"dashboard", func() error { return validateDashboard(cfg.Dashboard) }},
		{"telemetry", func() error { return validateTelemetry(cfg.Telemetry) }},
		{"command", func() error { return validatePositive("command.timeout", cfg.Command.Timeout) }},
		{"log", func() error { return validateLog(cfg.Log) }},
		{"metrics", func() error { return validateMetrics(cfg.Metrics) }},
	}

	for _, c := range checks {
		if err := c.fn(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				fmt.Sprintf("Check the '%s' section in your %s.", c.section, ConfigFileName))
		}
	}

	return nil
}

func validateServer(s ServerConfig) error {
	if s.URL == "" {
		return fmt.Errorf("server.url is empty - point it at the ground station, e.g. http://localhost:8000")
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("server.url '%s' doesn't parse: %v", s.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url '%s' needs an http or https scheme", s.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("server.url '%s' has no host", s.URL)
	}
	return validatePositive("server.request_timeout", s.RequestTimeout)
}

func validateStream(s StreamConfig) error {
	switch s.Mode {
	case StreamModeWebSocket, StreamModePoll:
	default:
		return fmt.Errorf("stream.mode '%s' isn't valid - use '%s' or '%s'", s.Mode, StreamModeWebSocket, StreamModePoll)
	}
	if err := validatePositive("stream.reconnect_delay", s.ReconnectDelay); err != nil {
		return err
	}
	return validatePositive("stream.poll_interval", s.PollInterval)
}

func validateDashboard(d DashboardConfig) error {
	if d.BufferSize <= 0 {
		return fmt.Errorf("dashboard.buffer_size needs to be at least 1 (got %d)", d.BufferSize)
	}
	return validatePositive("dashboard.staleness_tick", d.StalenessTick)
}

func validateTelemetry(t TelemetryConfig) error {
	if math.IsNaN(t.ScaleHeight) || math.IsInf(t.ScaleHeight, 0) || t.ScaleHeight <= 0 {
		return fmt.Errorf("telemetry.scale_height needs to be a positive number of meters (got %v)", t.ScaleHeight)
	}
	return nil
}

func validateLog(l LogConfig) error {
	switch l.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level '%s' isn't valid - use 'debug', 'info', 'warn', or 'error'", l.Level)
	}
	switch l.Format {
	case "text", "json", "":
	default:
		return fmt.Errorf("log.format '%s' isn't valid - use 'text' or 'json'", l.Format)
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 {
		return fmt.Errorf("log.max_size_mb and log.max_backups can't be negative")
	}
	return nil
}

func validateMetrics(m MetricsConfig) error {
	if m.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(m.Addr); err != nil {
		return fmt.Errorf("metrics.addr '%s' should look like ':9109' or '127.0.0.1:9109'", m.Addr)
	}
	return nil
}

func validatePositive(field string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s needs to be positive - try something like '2s' (got %v)", field, d)
	}
	return nil
}
