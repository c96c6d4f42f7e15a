package cli

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuildInfo(t *testing.T, v, c, d string) {
	t.Helper()
	oldV, oldC, oldD := version, commit, date
	t.Cleanup(func() { SetVersionInfo(oldV, oldC, oldD) })
	SetVersionInfo(v, c, d)
}

func TestPrintVersion_Text(t *testing.T) {
	withBuildInfo(t, "0.4.0", "9f2c1ab", "2026-10-01T08:00:00Z")

	var buf bytes.Buffer
	require.NoError(t, printVersion(&buf, false, false))

	want := "groundctl v0.4.0\n" +
		"  commit:  9f2c1ab\n" +
		"  built:   2026-10-01T08:00:00Z\n" +
		"  go:      " + runtime.Version() + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintVersion_Short(t *testing.T) {
	withBuildInfo(t, "0.4.0", "9f2c1ab", "unknown")

	var buf bytes.Buffer
	require.NoError(t, printVersion(&buf, true, true))
	assert.Equal(t, "0.4.0\n", buf.String(), "--short wins over --json")
}

func TestPrintVersion_JSON(t *testing.T) {
	withBuildInfo(t, "dev", "none", "unknown")

	var buf bytes.Buffer
	require.NoError(t, printVersion(&buf, false, true))

	var env struct {
		Success bool          `json:"success"`
		Data    versionOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, versionOutput{
		Version: "dev",
		Commit:  "none",
		Built:   "unknown",
		Go:      runtime.Version(),
		OSArch:  runtime.GOOS + "/" + runtime.GOARCH,
	}, env.Data)
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"dev", "dev"},
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"0.4.0-rc.1", "v0.4.0-rc.1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.in))
		})
	}
}

func TestGetVersion(t *testing.T) {
	withBuildInfo(t, "0.4.0", "none", "unknown")
	assert.Equal(t, "0.4.0", GetVersion())
}
