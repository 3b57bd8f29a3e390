package handlog

import (
	"time"

	"github.com/coder/quartz"
)

// Line is a single timestamped entry in a game's round log.
type Line struct {
	At   time.Time
	Text string
}

// MonitorConfig configures a per-game monitor.
type MonitorConfig struct {
	GameID     string
	OutputDir  string
	Filename   string
	FlushLines int
}

// ManagerConfig configures the server-wide manager.
type ManagerConfig struct {
	BaseDir       string
	FlushInterval time.Duration
	FlushLines    int
	Clock         quartz.Clock
}
