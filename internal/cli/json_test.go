package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/groundctl/groundctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineMode_DefaultValue(t *testing.T) {
	oldMode := machineMode
	defer func() { machineMode = oldMode }()

	machineMode = false
	assert.False(t, MachineMode())

	machineMode = true
	assert.True(t, MachineMode())
}

func TestWriteJSONSuccess_BasicData(t *testing.T) {
	var buf bytes.Buffer

	data := map[string]string{"key": "value"}
	err := WriteJSONSuccess(&buf, data)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	dataMap, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "value", dataMap["key"])
}

func TestWriteJSONSuccess_NilData(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSONSuccess(&buf, nil)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Nil(t, env.Error)
	assert.NotContains(t, buf.String(), `"data"`, "omitempty should drop nil data")
}

func TestWriteJSONError_AllFields(t *testing.T) {
	var buf bytes.Buffer

	details := map[string]string{"session": "flight-7"}
	err := WriteJSONError(&buf, ErrCodeFetchFailed, "Events unavailable", "Check the backend", details)
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeFetchFailed, env.Error.Code)
	assert.Equal(t, "Events unavailable", env.Error.Message)
	assert.Equal(t, "Check the backend", env.Error.Suggestion)
}

func TestWriteJSONEnvelope_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, map[string]int{"n": 1}))
	assert.Contains(t, buf.String(), "\n  \"success\": true")
}

func TestErrorToJSON(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantMsg   string
		wantCause bool
		wantSugg  string
	}{
		{
			name:     "config not found",
			err:      errors.New(errors.ErrConfig, "Config file not found: x.yaml", "Create one"),
			wantCode: ErrCodeConfigNotFound,
			wantMsg:  "Config file not found: x.yaml",
			wantSugg: "Create one",
		},
		{
			name:     "config invalid",
			err:      errors.New(errors.ErrConfig, "server.url is empty", ""),
			wantCode: ErrCodeConfigInvalid,
			wantMsg:  "server.url is empty",
		},
		{
			name:      "fetch with cause",
			err:       errors.WrapWithCode(fmt.Errorf("connection refused"), errors.ErrFetch, "Failed to fetch events", ""),
			wantCode:  ErrCodeFetchFailed,
			wantMsg:   "Failed to fetch events",
			wantCause: true,
		},
		{
			name:     "stream",
			err:      errors.New(errors.ErrStream, "Stream closed", ""),
			wantCode: ErrCodeStreamFailed,
			wantMsg:  "Stream closed",
		},
		{
			name:     "command",
			err:      errors.New(errors.ErrCommand, "Status: 503 — pad not ready", ""),
			wantCode: ErrCodeCommandFailed,
			wantMsg:  "Status: 503 — pad not ready",
		},
		{
			name:     "settings",
			err:      errors.New(errors.ErrSettings, "Not a number: x", ""),
			wantCode: ErrCodeSettingsInvalid,
			wantMsg:  "Not a number: x",
		},
		{
			name:     "wrapped structured error",
			err:      fmt.Errorf("events: %w", errors.New(errors.ErrFetch, "Backend returned 500", "")),
			wantCode: ErrCodeFetchFailed,
			wantMsg:  "Backend returned 500",
		},
		{
			name:     "plain error",
			err:      stderrors.New("boom"),
			wantCode: ErrCodeUnknown,
			wantMsg:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorToJSON(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.Equal(t, tt.wantSugg, got.Suggestion)
			if tt.wantCause {
				assert.NotNil(t, got.Details)
			} else {
				assert.Nil(t, got.Details)
			}
		})
	}
}

func TestErrorToJSON_Nil(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}

func TestWriteJSONFromError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSONFromError(&buf, errors.New(errors.ErrSettings, "Not a number: x", "Use hPa"))
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeSettingsInvalid, env.Error.Code)
	assert.Equal(t, "Use hPa", env.Error.Suggestion)
}
