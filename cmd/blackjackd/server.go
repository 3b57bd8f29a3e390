package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjackd/cmd/blackjackd/shared"
	"github.com/lox/blackjackd/internal/server"
)

// ServerCmd runs the HTTP API server.
type ServerCmd struct {
	Config string `kong:"default='blackjackd.hcl',help='Path to the HCL config file'"`
	Addr   string `kong:"help='Override the listen address (host:port)'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed for all sessions (optional)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Seed != nil {
		cfg.Server.Seed = *c.Seed
	}
	if c.Addr != "" {
		host, portStr, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid addr %q: %w", c.Addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", portStr, err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	debug := c.Debug || cfg.Server.LogLevel == "debug"
	logger := shared.SetupLogger(debug)
	roundLogger := shared.SetupGameLogger(debug)

	s := server.NewServer(cfg, logger, roundLogger, nil)

	logger.Info().
		Str("address", cfg.ListenAddr()).
		Int("decks", cfg.Table.Decks).
		Int("min_bet", cfg.Table.MinBet).
		Int("max_bet", cfg.Table.MaxBet).
		Int("starting_chips", cfg.Table.StartingChips).
		Bool("hit_soft_17", cfg.Table.HitSoft17).
		Dur("session_ttl", cfg.SessionTTL()).
		Str("round_log_dir", cfg.Server.RoundLogDir).
		Msg("Starting blackjackd server")

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(s.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
