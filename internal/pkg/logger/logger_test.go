package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
		{"", false, false, true},
		{"bogus", false, false, true},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: tt.level, Format: "json", Output: &buf})

			log.Debug("debug line")
			assert.Equal(t, tt.wantDebug, strings.Contains(buf.String(), "debug line"))
			log.Info("info line")
			assert.Equal(t, tt.wantInfo, strings.Contains(buf.String(), "info line"))
			log.Warn("warn line")
			assert.Equal(t, tt.wantWarn, strings.Contains(buf.String(), "warn line"))
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf}).
		With("run_id", "abc").
		WithFields(map[string]interface{}{"instance_id": "i-0123"})

	log.ErrorWithErr(errors.New("boom"), "Failed to iterate over ec2 instances")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "i-0123", entry["instance_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "Failed to iterate over ec2 instances", entry["message"])
}

func TestUseConsole(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, useConsole("console", &buf))
	assert.False(t, useConsole("json", &buf))
	// a buffer is never a terminal
	assert.False(t, useConsole("auto", &buf))
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().With("k", "v").Error("discarded")
	})
}
