package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Stream modes.
const (
	StreamModeWebSocket = "websocket"
	StreamModePoll      = "poll"
)

// Config represents the complete .groundctl.yaml configuration file.
// It is built once at startup and handed to each component by value.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Stream    StreamConfig    `yaml:"stream" mapstructure:"stream"`
	Sessions  SessionsConfig  `yaml:"sessions" mapstructure:"sessions"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	Command   CommandConfig   `yaml:"command" mapstructure:"command"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
}

// ServerConfig points at the ground station backend.
type ServerConfig struct {
	// URL is the HTTP base URL. The stream URL is derived from it
	// (https becomes wss, anything else ws).
	URL string `yaml:"url" mapstructure:"url"`

	// RequestTimeout bounds each one-shot HTTP request.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// StreamConfig controls the live event source.
type StreamConfig struct {
	// Mode is "websocket" (push) or "poll".
	Mode string `yaml:"mode" mapstructure:"mode"`

	// ReconnectDelay is the fixed wait before re-dialing after a close or error.
	ReconnectDelay time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay"`

	// PollInterval is the fetch period in poll mode.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// SessionsConfig controls session discovery.
type SessionsConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// DashboardConfig controls the live view.
type DashboardConfig struct {
	// BufferSize is the number of events kept for the active session.
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size"`

	// StalenessTick is how often "seconds since update" is recomputed.
	StalenessTick time.Duration `yaml:"staleness_tick" mapstructure:"staleness_tick"`
}

// TelemetryConfig holds derivation constants.
type TelemetryConfig struct {
	// ScaleHeight in meters for the barometric altitude formula.
	ScaleHeight float64 `yaml:"scale_height" mapstructure:"scale_height"`
}

// CommandConfig controls the launch command.
type CommandConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig controls the log file.
type LogConfig struct {
	// File is where logs go while the TUI owns the terminal.
	// Supports ~ expansion.
	File string `yaml:"file" mapstructure:"file"`

	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format" mapstructure:"format"`

	MaxSizeMB  int `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address, e.g. ":9109". Empty disables the server.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Server: ServerConfig{
			URL:            "http://localhost:8000",
			RequestTimeout: 10 * time.Second,
		},
		Stream: StreamConfig{
			Mode:           StreamModeWebSocket,
			ReconnectDelay: 2 * time.Second,
			PollInterval:   2 * time.Second,
		},
		Sessions: SessionsConfig{
			PollInterval: 5 * time.Second,
		},
		Dashboard: DashboardConfig{
			BufferSize:    50,
			StalenessTick: time.Second,
		},
		Telemetry: TelemetryConfig{
			ScaleHeight: 8500,
		},
		Command: CommandConfig{
			Timeout: 15 * time.Second,
		},
		Log: LogConfig{
			File:       "~/" + GlobalConfigDir + "/groundctl.log",
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
