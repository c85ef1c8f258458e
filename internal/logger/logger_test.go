package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want charmlog.Level
	}{
		{"debug", charmlog.DebugLevel},
		{"INFO", charmlog.InfoLevel},
		{"warn", charmlog.WarnLevel},
		{"warning", charmlog.WarnLevel},
		{"error", charmlog.ErrorLevel},
		{"bogus", charmlog.InfoLevel},
		{"", charmlog.InfoLevel},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.in))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "info", Output: &buf, JSON: true})
	l.Info("batch merged", "processed", 102, "total", 300)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "batch merged", line["msg"])
	assert.EqualValues(t, 102, line["processed"])
}

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "warn", Output: &buf})
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "debug", Output: &buf}).With("kind", "movie")
	l.Debug("loaded")
	assert.True(t, strings.Contains(buf.String(), "kind=movie"), buf.String())
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "info", Output: &buf})
	ctx := ContextWithLogger(context.Background(), l)
	FromContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), "hello")
}
