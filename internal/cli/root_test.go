package cli

import (
	"errors"
	"testing"

	"github.com/groundctl/groundctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unknown command error",
			err:  errors.New(`unknown command "foo" for "groundctl"`),
			want: true,
		},
		{
			name: "unknown flag error",
			err:  errors.New(`unknown flag: --foo`),
			want: true,
		},
		{
			name: "unknown shorthand flag",
			err:  errors.New(`unknown shorthand flag: 'x' in -x`),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("connection failed"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "standard cobra format",
			err:  errors.New(`unknown command "foo" for "groundctl"`),
			want: "foo",
		},
		{
			name: "command with hyphen",
			err:  errors.New(`unknown command "set-ref" for "groundctl settings"`),
			want: "set-ref",
		},
		{
			name: "no quotes returns empty",
			err:  errors.New("unknown command foo"),
			want: "",
		},
		{
			name: "single quote returns empty",
			err:  errors.New(`unknown command "foo`),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	oldServer, oldMetrics := serverFlag, metricsAddrFlag
	defer func() { serverFlag, metricsAddrFlag = oldServer, oldMetrics }()

	cfg := config.DefaultConfig()
	serverFlag, metricsAddrFlag = "", ""
	applyFlagOverrides(cfg)
	assert.Equal(t, config.DefaultConfig().Server.URL, cfg.Server.URL)
	assert.Empty(t, cfg.Metrics.Addr)

	serverFlag, metricsAddrFlag = "http://pad.example:9000", ":9109"
	applyFlagOverrides(cfg)
	assert.Equal(t, "http://pad.example:9000", cfg.Server.URL)
	assert.Equal(t, ":9109", cfg.Metrics.Addr)
}

func TestLoadConfig_RejectsBadServerFlag(t *testing.T) {
	oldServer, oldCfg := serverFlag, cfgFile
	defer func() { serverFlag, cfgFile = oldServer, oldCfg }()

	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfgFile = ""
	serverFlag = "not a url"

	_, err := loadConfig()
	require.Error(t, err)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"monitor", "events", "sessions", "launch", "settings", "simulate", "doctor", "version", "completion"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{"config", "server", "metrics-addr", "verbose"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}
