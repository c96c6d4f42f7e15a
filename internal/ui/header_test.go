package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHeader(t *testing.T) {
	out := RenderHeader(HeaderInfo{
		Version: "v1.2.0",
		Server:  "http://localhost:8000",
		Session: "sim-100",
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "groundctl v1.2.0", lines[0])
	assert.Equal(t, "server  http://localhost:8000", lines[1])
	assert.Equal(t, "session sim-100", lines[2])
	assert.Equal(t, strings.Repeat("━", HeaderWidth), lines[3])
}

func TestRenderHeader_Minimal(t *testing.T) {
	out := RenderHeader(HeaderInfo{Title: "simulate"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, []string{"simulate", strings.Repeat("━", HeaderWidth)}, lines)
}

func TestPrintHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintHeader(&buf, HeaderInfo{Version: "dev"})
	assert.True(t, strings.HasPrefix(buf.String(), "groundctl dev\n"))
}
