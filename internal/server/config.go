package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the server's HCL configuration
type Config struct {
	Server  *ServerConfig  `hcl:"server,block"`
	Tables  []TableConfig  `hcl:"table,block"`
	Session *SessionConfig `hcl:"session,block"`
	History *HistoryConfig `hcl:"history,block"`
}

type ServerConfig struct {
	ListenAddr string `hcl:"listen_addr,optional"`
	// AuthURL points at an external token validation endpoint. Empty
	// disables authentication.
	AuthURL string `hcl:"auth_url,optional"`
}

type TableConfig struct {
	Name       string       `hcl:"name,label"`
	SmallBlind int          `hcl:"small_blind,optional"`
	BigBlind   int          `hcl:"big_blind,optional"`
	Seats      []SeatConfig `hcl:"seat,block"`
}

type SeatConfig struct {
	Name  string `hcl:"name,label"`
	Stack int    `hcl:"stack"`
	Human bool   `hcl:"human,optional"`
	// Personality selects an AI style for non-human seats.
	Personality string `hcl:"personality,optional"`
}

type SessionConfig struct {
	StepMode           bool `hcl:"step_mode,optional"`
	StepTimeoutSeconds int  `hcl:"step_timeout_seconds,optional"`
	ActionDelayMs      int  `hcl:"action_delay_ms,optional"`
	HandLimit          int  `hcl:"hand_limit,optional"`
}

type HistoryConfig struct {
	// Path to the SQLite database. Empty keeps history in memory only.
	Path string `hcl:"path,optional"`
}

// DefaultConfig returns a playable single-table configuration
func DefaultConfig() Config {
	return Config{
		Server: &ServerConfig{ListenAddr: "127.0.0.1:8080"},
		Tables: []TableConfig{{
			Name:       "main",
			SmallBlind: 5,
			BigBlind:   10,
			Seats: []SeatConfig{
				{Name: "dealer-bot", Stack: 1000, Personality: "balanced"},
				{Name: "loose-bot", Stack: 1000, Personality: "calling_station"},
				{Name: "shark-bot", Stack: 1000, Personality: "tight"},
			},
		}},
		Session: &SessionConfig{StepTimeoutSeconds: 60},
		History: &HistoryConfig{},
	}
}

// LoadConfig reads an HCL config file, filling unset values from defaults
func LoadConfig(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// ParseConfig decodes HCL from a byte slice; filename is used in
// diagnostics only
func ParseConfig(src []byte, filename string) (Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, src, nil, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Server == nil {
		cfg.Server = &ServerConfig{}
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = def.Server.ListenAddr
	}
	if cfg.Session == nil {
		cfg.Session = def.Session
	}
	if cfg.Session.StepTimeoutSeconds <= 0 {
		cfg.Session.StepTimeoutSeconds = 60
	}
	if cfg.History == nil {
		cfg.History = def.History
	}
	for i := range cfg.Tables {
		table := &cfg.Tables[i]
		if table.SmallBlind <= 0 {
			table.SmallBlind = def.Tables[0].SmallBlind
		}
		if table.BigBlind < table.SmallBlind {
			table.BigBlind = 2 * table.SmallBlind
		}
	}
}

// StepTimeout converts the configured seconds to a duration
func (c *SessionConfig) StepTimeout() time.Duration {
	return time.Duration(c.StepTimeoutSeconds) * time.Second
}

// ActionDelay converts the configured milliseconds to a duration
func (c *SessionConfig) ActionDelay() time.Duration {
	return time.Duration(c.ActionDelayMs) * time.Millisecond
}
