package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjackd/internal/game"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Table  TableSettings  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	SessionTTL  string `hcl:"session_ttl,optional"`
	RoundLogDir string `hcl:"round_log_dir,optional"`
	Seed        int64  `hcl:"seed,optional"`
}

// TableSettings defines the blackjack table rules every session plays
// under.
type TableSettings struct {
	Decks         int  `hcl:"decks,optional"`
	MinBet        int  `hcl:"min_bet,optional"`
	MaxBet        int  `hcl:"max_bet,optional"`
	StartingChips int  `hcl:"starting_chips,optional"`
	HitSoft17     bool `hcl:"hit_soft_17,optional"`
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:     "localhost",
			Port:        8080,
			LogLevel:    "info",
			SessionTTL:  "30m",
			RoundLogDir: "rounds",
		},
		Table: TableSettings{
			Decks:         1,
			MinBet:        1,
			MaxBet:        1000,
			StartingChips: 1000,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}
	if c.Server.SessionTTL == "" {
		c.Server.SessionTTL = defaults.Server.SessionTTL
	}
	if c.Server.RoundLogDir == "" {
		c.Server.RoundLogDir = defaults.Server.RoundLogDir
	}
	if c.Table.Decks == 0 {
		c.Table.Decks = defaults.Table.Decks
	}
	if c.Table.MinBet == 0 {
		c.Table.MinBet = defaults.Table.MinBet
	}
	if c.Table.MaxBet == 0 {
		c.Table.MaxBet = defaults.Table.MaxBet
	}
	if c.Table.StartingChips == 0 {
		c.Table.StartingChips = defaults.Table.StartingChips
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be within 1..65535, got %d", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.SessionTTL); err != nil {
		return fmt.Errorf("invalid session_ttl %q: %w", c.Server.SessionTTL, err)
	}
	if c.Table.Decks < 1 || c.Table.Decks > 8 {
		return fmt.Errorf("decks must be within 1..8, got %d", c.Table.Decks)
	}
	if c.Table.MinBet < 1 {
		return fmt.Errorf("min_bet must be positive, got %d", c.Table.MinBet)
	}
	if c.Table.MaxBet < c.Table.MinBet {
		return fmt.Errorf("max_bet %d must not be below min_bet %d", c.Table.MaxBet, c.Table.MinBet)
	}
	if c.Table.StartingChips < c.Table.MinBet {
		return fmt.Errorf("starting_chips %d cannot cover the min_bet %d", c.Table.StartingChips, c.Table.MinBet)
	}
	return nil
}

// ListenAddr returns the address:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// SessionTTL returns the parsed session time-to-live.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// GameConfig maps the table settings onto the round configuration.
func (c *Config) GameConfig() game.Config {
	return game.Config{
		StartingChips: c.Table.StartingChips,
		NumDecks:      c.Table.Decks,
		MinBet:        c.Table.MinBet,
		MaxBet:        c.Table.MaxBet,
		HitSoft17:     c.Table.HitSoft17,
	}
}
