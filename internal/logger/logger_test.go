package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSilentByDefault(t *testing.T) {
	buf := reset(t)
	Debug("should not appear")
	Info("should not appear")
	Warn("should not appear")
	assert.Empty(t, buf.String())
}

func TestVerboseLevels(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Debug("parsing %s", "a.md")
	Info("ingested %d", 3)
	Warn("failure on %s", "b.md")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] parsing a.md\n")
	assert.Contains(t, out, "[INFO] ingested 3\n")
	assert.Contains(t, out, "[WARN] failure on b.md\n")
}

func TestIsVerbose(t *testing.T) {
	reset(t)
	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
}
