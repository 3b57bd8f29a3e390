package handlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultFilename = "rounds.log"

	// maxConsecutiveFailures disables a monitor after this many flush
	// errors in a row; buffered lines are dropped rather than growing
	// without bound against a dead disk.
	maxConsecutiveFailures = 3
)

// ErrDisabled is returned by Append once recording has been switched off
// after repeated flush failures.
var ErrDisabled = errors.New("handlog: recording disabled")

// Monitor buffers the round log lines for one game and writes them to an
// append-only file. Append never blocks gameplay on I/O; writes happen in
// Flush, driven by the manager's ticker or the buffer threshold.
type Monitor struct {
	cfg     MonitorConfig
	logger  zerolog.Logger
	outPath string

	mu                  sync.Mutex
	flushMu             sync.Mutex
	buffer              []Line
	flushNotifier       func()
	consecutiveFailures int
	disabled            bool
}

// NewMonitor constructs a monitor for one game, creating its output dir.
func NewMonitor(cfg MonitorConfig, logger zerolog.Logger) (*Monitor, error) {
	if cfg.GameID == "" {
		return nil, errors.New("handlog: GameID is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("handlog: OutputDir is required")
	}
	if cfg.Filename == "" {
		cfg.Filename = defaultFilename
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("handlog: create dir: %w", err)
	}

	return &Monitor{
		cfg:     cfg,
		logger:  logger,
		outPath: filepath.Join(cfg.OutputDir, cfg.Filename),
		buffer:  make([]Line, 0, max(1, cfg.FlushLines)),
	}, nil
}

// Path returns the file this monitor appends to.
func (m *Monitor) Path() string { return m.outPath }

// SetFlushNotifier registers a callback invoked when the buffer crosses
// the flush threshold.
func (m *Monitor) SetFlushNotifier(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushNotifier = fn
}

// Append buffers one timestamped line. Implements the auto-play sink
// contract; the only error it ever returns is ErrDisabled.
func (m *Monitor) Append(at time.Time, line string) error {
	m.mu.Lock()
	if m.disabled {
		m.mu.Unlock()
		return ErrDisabled
	}
	m.buffer = append(m.buffer, Line{At: at, Text: line})
	notify := m.cfg.FlushLines > 0 && len(m.buffer) >= m.cfg.FlushLines
	notifier := m.flushNotifier
	m.mu.Unlock()

	if notify && notifier != nil {
		notifier()
	}
	return nil
}

// Buffered returns the number of lines waiting to be written.
func (m *Monitor) Buffered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffer)
}

// Flush writes all buffered lines to the file. On error the buffer is
// kept for the next attempt.
func (m *Monitor) Flush() error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	m.mu.Lock()
	if m.disabled || len(m.buffer) == 0 {
		m.mu.Unlock()
		return nil
	}
	pending := make([]Line, len(m.buffer))
	copy(pending, m.buffer)
	m.mu.Unlock()

	var sb strings.Builder
	for _, line := range pending {
		sb.WriteString(line.At.Format(time.RFC3339))
		sb.WriteByte(' ')
		sb.WriteString(line.Text)
		sb.WriteByte('\n')
	}

	f, err := os.OpenFile(m.outPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("handlog: open %s: %w", m.outPath, err)
	}
	_, werr := f.WriteString(sb.String())
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("handlog: write %s: %w", m.outPath, werr)
	}
	if cerr != nil {
		return fmt.Errorf("handlog: close %s: %w", m.outPath, cerr)
	}

	m.mu.Lock()
	m.buffer = m.buffer[len(pending):]
	m.mu.Unlock()
	return nil
}

// HandleFlushResult updates the failure counter after a flush attempt.
// Returns whether the monitor disabled itself and how many buffered lines
// were dropped in doing so.
func (m *Monitor) HandleFlushResult(err error) (disabled bool, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		m.consecutiveFailures = 0
		return false, 0
	}

	m.consecutiveFailures++
	if m.consecutiveFailures < maxConsecutiveFailures {
		return false, 0
	}

	dropped = len(m.buffer)
	m.buffer = nil
	m.disabled = true
	return true, dropped
}

// Disabled reports whether recording has been switched off.
func (m *Monitor) Disabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disabled
}

// Close flushes any remaining lines.
func (m *Monitor) Close() error {
	return m.Flush()
}
