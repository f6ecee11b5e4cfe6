package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bogdanmosica/trador/portfolio"
	"github.com/bogdanmosica/trador/risk"
)

// Config is the complete runtime configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Monitor  MonitorConfig  `json:"monitor,omitempty" yaml:"monitor,omitempty"`
	Scenario ScenarioConfig `json:"scenario,omitempty" yaml:"scenario,omitempty"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	ID            string  `json:"id" yaml:"id"`
	Currency      string  `json:"currency" yaml:"currency"`
	InitialEquity float64 `json:"initial_equity" yaml:"initial_equity"`
}

// RiskConfig is the ordered rule list handed to the risk engine.
type RiskConfig struct {
	Rules []risk.RuleConfig `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", "multi" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// MonitorConfig controls the Prometheus exposition endpoint.
type MonitorConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Listen  string `json:"listen,omitempty" yaml:"listen,omitempty"`
}

// ScenarioConfig is a scripted event sequence for the replay runner.
type ScenarioConfig struct {
	Steps []Step `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Step is one scripted event. Exactly one of Fill or Mark must be set.
type Step struct {
	Fill *FillStep `json:"fill,omitempty" yaml:"fill,omitempty"`
	Mark *MarkStep `json:"mark,omitempty" yaml:"mark,omitempty"`
}

// FillStep describes an execution event.
type FillStep struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Side   string  `json:"side" yaml:"side"`
	Qty    float64 `json:"qty" yaml:"qty"`
	Price  float64 `json:"price" yaml:"price"`
	Fee    float64 `json:"fee,omitempty" yaml:"fee,omitempty"`
	At     string  `json:"at,omitempty" yaml:"at,omitempty"` // RFC3339; empty means now
}

// MarkStep describes a mark price update.
type MarkStep struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Price  float64 `json:"price" yaml:"price"`
	At     string  `json:"at,omitempty" yaml:"at,omitempty"` // RFC3339; empty means now
}

// ParseTime parses the step timestamp. A zero return with nil error means
// the caller should substitute the current time.
func (s FillStep) ParseTime() (time.Time, error) { return parseAt(s.At) }

// ParseTime parses the step timestamp. A zero return with nil error means
// the caller should substitute the current time.
func (s MarkStep) ParseTime() (time.Time, error) { return parseAt(s.At) }

func parseAt(at string) (time.Time, error) {
	if at == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, at)
}

// LoadFromFile loads configuration from a file (YAML or JSON based on content).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays TRADOR_* environment variables onto the config. Only
// deployment-varying fields are overridable; everything else belongs in the
// file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TRADOR_JOURNAL_DB"); v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
	if v := os.Getenv("TRADOR_MONITOR_LISTEN"); v != "" {
		c.Monitor.Listen = v
	}
}

// Validate checks if the configuration is valid. Rule names are not checked
// here: the risk engine warns about and skips unknown rules so a stale name
// does not make the whole config unusable.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.InitialEquity <= 0 {
		return fmt.Errorf("account.initial_equity must be positive")
	}
	for i, r := range c.Risk.Rules {
		if r.Name == "" {
			return fmt.Errorf("risk.rules[%d].name is required", i)
		}
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "multi":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for multi type")
		}
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for multi type")
		}
	case "", "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', 'multi' or 'none'")
	}
	if c.Monitor.Enabled && c.Monitor.Listen == "" {
		return fmt.Errorf("monitor.listen required when monitor is enabled")
	}
	for i, s := range c.Scenario.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("scenario.steps[%d]: %w", i, err)
		}
	}
	return nil
}

// Validate checks that the step describes exactly one well-formed event.
func (s Step) Validate() error {
	switch {
	case s.Fill != nil && s.Mark != nil:
		return fmt.Errorf("set exactly one of fill or mark, got both")

	case s.Fill != nil:
		f := s.Fill
		if f.Symbol == "" {
			return fmt.Errorf("fill.symbol is required")
		}
		if !portfolio.Side(f.Side).Valid() {
			return fmt.Errorf("fill.side %q (want BUY or SELL)", f.Side)
		}
		if f.Qty <= 0 {
			return fmt.Errorf("fill.qty must be positive")
		}
		if f.Price <= 0 {
			return fmt.Errorf("fill.price must be positive")
		}
		if f.Fee < 0 {
			return fmt.Errorf("fill.fee must not be negative")
		}
		if _, err := f.ParseTime(); err != nil {
			return fmt.Errorf("fill.at: %w", err)
		}

	case s.Mark != nil:
		m := s.Mark
		if m.Symbol == "" {
			return fmt.Errorf("mark.symbol is required")
		}
		if m.Price <= 0 {
			return fmt.Errorf("mark.price must be positive")
		}
		if _, err := m.ParseTime(); err != nil {
			return fmt.Errorf("mark.at: %w", err)
		}

	default:
		return fmt.Errorf("set one of fill or mark")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:            "ACCT-001",
			Currency:      "USD",
			InitialEquity: 10000,
		},
		Risk: RiskConfig{
			Rules: []risk.RuleConfig{
				{Name: "max_position_size", Critical: true, Params: risk.Params{"max_size_usd": 50000.0}},
				{Name: "max_drawdown", Critical: true, Params: risk.Params{"max_drawdown_pct": 10.0}},
			},
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./trador.sqlite",
		},
		Monitor: MonitorConfig{
			Listen: ":9090",
		},
	}
}
