package logging

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, os.Stdout, cfg.Output)
}

func TestStdioConfig(t *testing.T) {
	assert.Equal(t, io.Discard, StdioConfig("info").Output)
	assert.Equal(t, os.Stderr, StdioConfig("debug").Output)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{"warn", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO},
		{"", bolt.INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestJSONLoggerWritesFields(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Config{Level: "debug", Format: "json", Output: buf})
	t.Cleanup(func() { Init(Config{Level: "info", Output: io.Discard}) })

	Info().With(
		Tool("merge"),
		Path("/tmp/out.pdf"),
		Pages(3),
		Duration(1500*time.Millisecond),
		Component("test"),
		Err(nil),
	).Msg("tool finished")

	out := buf.String()
	assert.Contains(t, out, `"tool":"merge"`)
	assert.Contains(t, out, `"path":"/tmp/out.pdf"`)
	assert.Contains(t, out, `"pages":3`)
	assert.Contains(t, out, `"duration_ms":1500`)
	assert.Contains(t, out, "tool finished")
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Config{Level: "error", Format: "json", Output: buf})
	t.Cleanup(func() { Init(Config{Level: "info", Output: io.Discard}) })

	Info().Msg("hidden")
	Error().With(Err(errors.New("boom"))).Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "boom")
}
