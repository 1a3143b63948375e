package deskforge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLogWritesTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskforge.log")
	t.Setenv("DESKFORGE_LOG", path)

	require.NoError(t, openRunLog())
	logInfof("hello %s", "world")
	logWarnf("careful")
	closeRunLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[INFO] hello world")
	assert.Contains(t, lines[1], "[WARN] careful")
}

func TestRunLogRotatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskforge.log")
	t.Setenv("DESKFORGE_LOG", path)

	require.NoError(t, openRunLog())
	logInfof("first run")
	closeRunLog()

	require.NoError(t, openRunLog())
	logInfof("second run")
	closeRunLog()

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(current), "second run")
	assert.NotContains(t, string(current), "first run", "the log is truncated per run")

	rotated, err := readRotatedLog(path + ".1.gz")
	require.NoError(t, err)
	assert.Contains(t, rotated, "first run")
}

func TestLogLineWithoutOpenLogIsSafe(t *testing.T) {
	closeRunLog()
	assert.NotPanics(t, func() { logInfof("dropped") })
}
