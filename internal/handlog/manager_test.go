package handlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, flushLines int) *Manager {
	t.Helper()
	m := NewManager(zerolog.Nop(), ManagerConfig{
		BaseDir:       t.TempDir(),
		FlushInterval: time.Hour, // flushes in tests come from thresholds and Shutdown
		FlushLines:    flushLines,
	})
	t.Cleanup(m.Shutdown)
	return m
}

func TestManagerCreateMonitor(t *testing.T) {
	m := newTestManager(t, 100)

	monitor, err := m.CreateMonitor("game-1")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Dir(monitor.Path()))

	_, err = m.CreateMonitor("game-1")
	assert.Error(t, err)
}

func TestManagerMonitorGetOrCreate(t *testing.T) {
	m := newTestManager(t, 100)

	first, err := m.Monitor("game-1")
	require.NoError(t, err)
	second, err := m.Monitor("game-1")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestManagerFlushesWhenThresholdReached(t *testing.T) {
	m := newTestManager(t, 2)

	monitor, err := m.CreateMonitor("game-1")
	require.NoError(t, err)

	require.NoError(t, monitor.Append(time.Now(), "one"))
	require.NoError(t, monitor.Append(time.Now(), "two"))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(monitor.Path())
		return err == nil && len(data) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManagerShutdownFlushesBufferedLines(t *testing.T) {
	m := NewManager(zerolog.Nop(), ManagerConfig{
		BaseDir:       t.TempDir(),
		FlushInterval: time.Hour,
		FlushLines:    100,
	})

	monitor, err := m.CreateMonitor("game-1")
	require.NoError(t, err)
	require.NoError(t, monitor.Append(time.Now(), "held back"))

	m.Shutdown()

	data, err := os.ReadFile(monitor.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "held back")
}

func TestManagerDisablesFailingMonitor(t *testing.T) {
	m := newTestManager(t, 1)

	monitor, err := m.CreateMonitor("game-1")
	require.NoError(t, err)

	// A directory at the output path makes every flush fail; each append
	// crosses the threshold and requests another flush.
	require.NoError(t, os.Mkdir(monitor.Path(), 0o755))

	for i := 0; i < maxConsecutiveFailures+1; i++ {
		if monitor.Append(time.Now(), "doomed") != nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, monitor.Disabled, 2*time.Second, 10*time.Millisecond)

	// The manager unregisters a disabled monitor, so the next request
	// builds a fresh one.
	replacement, err := m.Monitor("game-1")
	require.NoError(t, err)
	assert.NotSame(t, monitor, replacement)
}
