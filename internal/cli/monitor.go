package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/groundctl/groundctl/internal/api"
	"github.com/groundctl/groundctl/internal/command"
	"github.com/groundctl/groundctl/internal/config"
	"github.com/groundctl/groundctl/internal/dashboard"
	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/logger"
	"github.com/groundctl/groundctl/internal/metrics"
	"github.com/groundctl/groundctl/internal/monitor"
	"github.com/groundctl/groundctl/internal/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type monitorOptions struct {
	Session string
	// Poll forces the polling source regardless of stream.mode.
	Poll bool
}

// runMonitor starts the dashboard and blocks until the operator quits.
func runMonitor(cmd *cobra.Command, opts monitorOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := dashboardLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog.Close()
	logger.SetDefault(log)

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollectorWithRegistry(registry)
	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, registry, log)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	store := settingsStore()
	ref, err := store.ReferencePressure()
	if err != nil {
		// A broken settings file disables altitude but never blocks the dashboard.
		log.Warn("reading %s: %v", store.Path(), err)
		ref = 0
	}

	ctrl := dashboard.New(dashboard.Options{
		NewSource:           sourceFactory(cfg, client, opts.Poll, log),
		Sessions:            client,
		BufferSize:          cfg.Dashboard.BufferSize,
		SessionPollInterval: cfg.Sessions.PollInterval,
		StalenessTick:       cfg.Dashboard.StalenessTick,
		ScaleHeight:         cfg.Telemetry.ScaleHeight,
		ReferencePressure:   ref,
		Settings:            store,
		Session:             opts.Session,
		Metrics:             collector,
		Logger:              log,
	})
	gate := command.NewGate(command.Options{
		Launcher: client,
		Timeout:  cfg.Command.Timeout,
		Metrics:  collector,
		Logger:   log,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	p := tea.NewProgram(monitor.NewModel(ctrl, gate), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()

	cancel()
	if err := <-done; err != nil && !stderrors.Is(err, context.Canceled) {
		log.Error("dashboard stopped: %v", err)
	}
	if runErr != nil && !stderrors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return nil
}

// sourceFactory picks the event source for the configured stream mode.
func sourceFactory(cfg *config.Config, client *api.Client, forcePoll bool, log logger.Logger) func(stream.Sink) stream.Source {
	if forcePoll || cfg.Stream.Mode == config.StreamModePoll {
		return func(sink stream.Sink) stream.Source {
			return stream.NewPoller(stream.PollerOptions{
				Fetcher:  client,
				Interval: cfg.Stream.PollInterval,
				Sink:     sink,
				Logger:   log,
			})
		}
	}
	return func(sink stream.Sink) stream.Source {
		return stream.NewManager(stream.ManagerOptions{
			Dialer: stream.WebSocketDialer{
				Header:           client.Header(),
				HandshakeTimeout: cfg.Server.RequestTimeout,
			},
			URL:            client.StreamURL,
			ReconnectDelay: cfg.Stream.ReconnectDelay,
			Sink:           sink,
			Logger:         log,
		})
	}
}

// dashboardLogger writes to the rotating log file since the dashboard owns
// the terminal.
func dashboardLogger(cfg *config.Config) (logger.Logger, io.Closer, error) {
	path := config.ExpandTilde(cfg.Log.File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create the log directory",
			"Check permissions or set log.file to a writable path.")
	}
	level := cfg.Log.Level
	if verboseFlag {
		level = "debug"
	}
	log, closer := logger.NewFile(logger.FileOptions{
		Path:       path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Level:      level,
		Format:     cfg.Log.Format,
	})
	return log, closer, nil
}
