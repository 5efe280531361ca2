package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsPerComponent(t *testing.T) {
	a := NewLogger("auth")
	b := NewLogger("auth")
	c := NewLogger("chat")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "auth", a.Data["component"])
}

func TestSetupJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Setup(Config{Level: "info", Output: os.Stderr}) })

	NewLogger("setup-test").WithField("op", "login").Debug("signed in")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "signed in", line["msg"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "setup-test", line["component"])
	assert.Equal(t, "login", line["op"])
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: "loud", Output: &buf})
	t.Cleanup(func() { Setup(Config{Level: "info", Output: os.Stderr}) })

	l := NewLogger("fallback-test")
	l.Debug("hidden")
	l.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
