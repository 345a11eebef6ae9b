package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"":        LogLevelInfo,
		"warning": LogLevelWarn,
		" error ": LogLevelError,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestSetOutput_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LogLevelWarn)
	defer SetOutput(os.Stdout, LogLevelInfo)

	LogInfo("hidden message")
	LogWarn("visible message", "source", "gpu")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "visible message")
	assert.Contains(t, out, "source=gpu")
}

func TestInitializeLogging_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	require.NoError(t, InitializeLogging(LogLevelDebug, path))
	defer func() {
		CloseLogging()
		SetOutput(os.Stdout, LogLevelInfo)
	}()

	LogDebug("startup finished", "gpu_available", false)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "startup finished")
	assert.Contains(t, string(data), "gpu_available=false")
}
