package events_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexutil/watchsweep/internal/events"
)

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.InfoLevel, "text", &buf)

	logger.WithField("username", "alice").Info("Account authorized")

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "Account authorized")
	assert.Contains(t, out, "username=alice")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	logger.WithFields(map[string]interface{}{
		"component": "sync",
		"removed":   3,
	}).Info("Run finished")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Run finished", entry["msg"])
	assert.Equal(t, "sync", entry["component"])
	assert.Equal(t, float64(3), entry["removed"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.WarnLevel, "text", &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	base := events.NewTestLogger(events.InfoLevel, "text", &buf)

	child := base.WithField("component", "store")
	child.WithField("file", "state.json").Info("saved")

	assert.Contains(t, buf.String(), "component=store")
	assert.Contains(t, buf.String(), "file=state.json")

	// The parent logger is not mutated by the chained child.
	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "component=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, events.DebugLevel, events.ParseLevel("debug"))
	assert.Equal(t, events.WarnLevel, events.ParseLevel("WARN"))
	assert.Equal(t, events.ErrorLevel, events.ParseLevel("error"))
	assert.Equal(t, events.InfoLevel, events.ParseLevel("anything"))
}

func TestRedactToken(t *testing.T) {
	assert.Equal(t, "abcd****", events.RedactToken("abcdefgh"))
	assert.Equal(t, "****", events.RedactToken("abc"))
	assert.Equal(t, "****", events.RedactToken(""))
}
