package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".groundctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigFileCheck(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := writeConfig(t, "version: 1\n")
		result := (&ConfigFileCheck{ConfigPath: path}).Run(context.Background())
		assert.Equal(t, StatusPass, result.Status)
		assert.Contains(t, result.Message, path)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.yaml")
		result := (&ConfigFileCheck{ConfigPath: path}).Run(context.Background())
		assert.Equal(t, StatusFail, result.Status)
		assert.Contains(t, result.Message, "not found")
	})
}

func TestConfigValidCheck(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantStatus CheckStatus
		wantMsg    string
	}{
		{
			name:       "valid",
			content:    "version: 1\nserver:\n  url: http://pad.local:8000\nstream:\n  mode: poll\n",
			wantStatus: StatusPass,
			wantMsg:    "server http://pad.local:8000, poll mode",
		},
		{
			name:       "bad stream mode",
			content:    "version: 1\nstream:\n  mode: carrier-pigeon\n",
			wantStatus: StatusFail,
		},
		{
			name:       "bad yaml",
			content:    "server: [unclosed\n",
			wantStatus: StatusFail,
			wantMsg:    "Failed to load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			result := (&ConfigValidCheck{ConfigPath: path}).Run(context.Background())
			assert.Equal(t, tt.wantStatus, result.Status, result.Message)
			assert.Contains(t, result.Message, tt.wantMsg)
		})
	}
}
