// Package config loads the engine's runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// Config holds the engine's runtime configuration.
type Config struct {
	DBPath             string `json:"db_path"`
	ListenAddr         string `json:"listen_addr"`
	EngineEnabled      *bool  `json:"engine_enabled"`
	CacheTTLSec        int    `json:"cache_ttl_sec"`
	HistoryWindowDays  int    `json:"history_window_days"`
	InsulinWaveHours   float64 `json:"insulin_wave_hours"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute"`
}

// Load reads a JSON config file, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Enabled reports the kill-switch value, defaulting to on when unset.
func (c *Config) Enabled() bool {
	if c.EngineEnabled == nil {
		return true
	}
	return *c.EngineEnabled
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":9810"
	}
	if c.CacheTTLSec == 0 {
		c.CacheTTLSec = 120
	}
	if c.HistoryWindowDays == 0 {
		c.HistoryWindowDays = 90
	}
	if c.InsulinWaveHours == 0 {
		c.InsulinWaveHours = 3
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
}

func (c *Config) validate() error {
	var problems []string

	if c.DBPath == "" {
		problems = append(problems, "db_path is required")
	}
	if c.CacheTTLSec < 0 {
		problems = append(problems, "cache_ttl_sec must not be negative")
	}
	if c.HistoryWindowDays < 0 || c.HistoryWindowDays > 90 {
		problems = append(problems, "history_window_days must be between 1 and 90")
	}
	if c.InsulinWaveHours < 0 {
		problems = append(problems, "insulin_wave_hours must not be negative")
	}

	if len(problems) > 0 {
		return &domain.EngineError{
			Code:    domain.ErrConfigInvalid.Code,
			Message: fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems),
		}
	}
	return nil
}
