package autoplay

import "fmt"

// Strategy selects the hit/stand threshold table.
type Strategy string

const (
	StrategyBasic        Strategy = "basic"
	StrategyConservative Strategy = "conservative"
	StrategyAggressive   Strategy = "aggressive"
)

// BetStrategy selects how the bet for each round is sized.
type BetStrategy string

const (
	BetFixed       BetStrategy = "fixed"
	BetProgressive BetStrategy = "progressive"
	BetPercentage  BetStrategy = "percentage"
)

// Policy is an always/never toggle used for insurance.
type Policy string

const (
	PolicyAlways Policy = "always"
	PolicyNever  Policy = "never"
)

// ActionPref controls an optional action: take it whenever legal, never,
// or only when the basic-strategy chart recommends it.
type ActionPref string

const (
	PrefAlways      ActionPref = "always"
	PrefNever       ActionPref = "never"
	PrefRecommended ActionPref = "recommended"
)

// Config fixes the auto-play behavior for an entire session. Zero values
// fill in with sensible defaults via ApplyDefaults.
type Config struct {
	DefaultBet int `json:"default_bet"`
	Hands      int `json:"hands"`

	Strategy    Strategy    `json:"strategy"`
	BetStrategy BetStrategy `json:"bet_strategy"`
	BetPercent  int         `json:"bet_percent"`

	Insurance  Policy     `json:"insurance"`
	DoubleDown ActionPref `json:"double_down"`
	Split      ActionPref `json:"split"`
	Surrender  ActionPref `json:"surrender"`
}

// ApplyDefaults fills zero fields with the default session settings.
func (c *Config) ApplyDefaults() {
	if c.DefaultBet == 0 {
		c.DefaultBet = 10
	}
	if c.Hands == 0 {
		c.Hands = 10
	}
	if c.Strategy == "" {
		c.Strategy = StrategyBasic
	}
	if c.BetStrategy == "" {
		c.BetStrategy = BetFixed
	}
	if c.BetPercent == 0 {
		c.BetPercent = 5
	}
	if c.Insurance == "" {
		c.Insurance = PolicyNever
	}
	if c.DoubleDown == "" {
		c.DoubleDown = PrefRecommended
	}
	if c.Split == "" {
		c.Split = PrefRecommended
	}
	if c.Surrender == "" {
		c.Surrender = PrefNever
	}
}

// Validate rejects configurations that cannot drive a session.
func (c *Config) Validate() error {
	if c.DefaultBet < 0 {
		return fmt.Errorf("default bet must not be negative, got %d", c.DefaultBet)
	}
	if c.Hands < 0 {
		return fmt.Errorf("hands must not be negative, got %d", c.Hands)
	}
	if c.BetPercent < 0 || c.BetPercent > 100 {
		return fmt.Errorf("bet percent must be within 0..100, got %d", c.BetPercent)
	}
	switch c.Strategy {
	case StrategyBasic, StrategyConservative, StrategyAggressive:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	switch c.BetStrategy {
	case BetFixed, BetProgressive, BetPercentage:
	default:
		return fmt.Errorf("unknown bet strategy %q", c.BetStrategy)
	}
	switch c.Insurance {
	case PolicyAlways, PolicyNever:
	default:
		return fmt.Errorf("unknown insurance policy %q", c.Insurance)
	}
	for name, pref := range map[string]ActionPref{
		"double_down": c.DoubleDown,
		"split":       c.Split,
		"surrender":   c.Surrender,
	} {
		switch pref {
		case PrefAlways, PrefNever, PrefRecommended:
		default:
			return fmt.Errorf("unknown %s preference %q", name, pref)
		}
	}
	return nil
}
