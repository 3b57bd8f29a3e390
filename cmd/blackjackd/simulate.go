package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/lox/blackjackd/cmd/blackjackd/shared"
	"github.com/lox/blackjackd/internal/autoplay"
	"github.com/lox/blackjackd/internal/game"
	"github.com/lox/blackjackd/internal/handlog"
	"github.com/lox/blackjackd/internal/randutil"
)

// SimulateCmd plays auto-play sessions offline, without the HTTP layer.
type SimulateCmd struct {
	Hands       int    `kong:"default='1000',help='Number of hands to play'"`
	Bet         int    `kong:"default='10',help='Base bet per hand'"`
	Strategy    string `kong:"default='basic',help='Playing strategy: basic, conservative, aggressive'"`
	BetStrategy string `kong:"name='bet-strategy',default='fixed',help='Bet sizing: fixed, progressive, percentage'"`
	BetPercent  int    `kong:"name='bet-percent',default='5',help='Bankroll percentage for percentage bet sizing'"`
	Insurance   bool   `kong:"help='Always take insurance and even money'"`
	Surrender   bool   `kong:"help='Surrender when the chart recommends it'"`
	Chips       int    `kong:"default='1000',help='Starting chips'"`
	Decks       int    `kong:"default='1',help='Decks in the shoe'"`
	MinBet      int    `kong:"name='min-bet',default='1',help='Table minimum bet'"`
	MaxBet      int    `kong:"name='max-bet',default='1000',help='Table maximum bet'"`
	HitSoft17   bool   `kong:"name='hit-soft-17',help='Dealer hits soft 17'"`
	Seed        int64  `kong:"default='0',help='RNG seed (0 for random)'"`
	LogDir      string `kong:"name='log-dir',help='Write the round log to this directory'"`
	Debug       bool   `kong:"help='Enable debug logging'"`
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

func (c *SimulateCmd) Run() error {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger := shared.SetupGameLogger(c.Debug)
	round := game.NewRound(game.Config{
		StartingChips: c.Chips,
		NumDecks:      c.Decks,
		MinBet:        c.MinBet,
		MaxBet:        c.MaxBet,
		HitSoft17:     c.HitSoft17,
	}, randutil.New(seed), logger)

	cfg := autoplay.Config{
		DefaultBet:  c.Bet,
		Hands:       c.Hands,
		Strategy:    autoplay.Strategy(c.Strategy),
		BetStrategy: autoplay.BetStrategy(c.BetStrategy),
		BetPercent:  c.BetPercent,
	}
	if c.Insurance {
		cfg.Insurance = autoplay.PolicyAlways
	}
	if c.Surrender {
		cfg.Surrender = autoplay.PrefRecommended
	}

	var sink autoplay.Sink
	if c.LogDir != "" {
		monitor, err := handlog.NewMonitor(handlog.MonitorConfig{
			GameID:    round.ID,
			OutputDir: c.LogDir,
		}, zerolog.Nop())
		if err != nil {
			return err
		}
		defer monitor.Close()
		sink = monitor
		fmt.Printf("Writing round log to %s\n", monitor.Path())
	}

	driver := autoplay.New(round, cfg, sink, logger)

	ctx := shared.SetupSignalHandler()
	start := time.Now()
	stats, status, err := driver.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printSummary(stats, status, c.Chips, seed, elapsed)
	return nil
}

func printSummary(stats *autoplay.SessionStats, status autoplay.Status, startChips int, seed int64, elapsed time.Duration) {
	fmt.Println()
	fmt.Println(titleStyle.Render("=== Auto-Play Session ==="))
	fmt.Printf("%s %s\n", labelStyle.Render("Status:"), valueStyle.Render(string(status)))
	fmt.Printf("%s %d\n", labelStyle.Render("Rounds:"), stats.Rounds)
	fmt.Printf("%s %d won, %d lost, %d pushed (%d blackjacks, %d even money)\n",
		labelStyle.Render("Outcomes:"),
		stats.Wins, stats.Losses, stats.Pushes, stats.Blackjacks, stats.EvenMoney)
	fmt.Printf("%s %.1f%%\n", labelStyle.Render("Win rate:"), stats.WinRate()*100)

	net := fmt.Sprintf("%+d", stats.NetChips)
	if stats.NetChips >= 0 {
		net = winStyle.Render(net)
	} else {
		net = lossStyle.Render(net)
	}
	fmt.Printf("%s %s (from %d wagered, bankroll %d -> %d)\n",
		labelStyle.Render("Net chips:"),
		net, stats.TotalWagered, startChips, startChips+stats.NetChips)

	fmt.Printf("%s mean %+.2f, median %+.1f, stddev %.2f per round\n",
		labelStyle.Render("Distribution:"),
		stats.Mean(), stats.Median(), stats.StdDev())

	perSec := 0.0
	if elapsed > 0 {
		perSec = float64(stats.Rounds) / elapsed.Seconds()
	}
	fmt.Printf("%s %s (%.0f rounds/sec)\n", labelStyle.Render("Elapsed:"), elapsed.Round(time.Millisecond), perSec)
	fmt.Printf("%s %d\n", labelStyle.Render("Seed:"), seed)
}
