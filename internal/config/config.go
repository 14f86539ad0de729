//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for chessdash.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for chessdash.
type Config struct {
	// Database is the path to the embedded DuckDB warehouse file.
	Database string `mapstructure:"database"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LichessUsername is the Lichess account tracked by the dashboard.
	LichessUsername string `mapstructure:"lichess_username"`

	// ChesscomUsername is the Chess.com account tracked by the dashboard.
	ChesscomUsername string `mapstructure:"chesscom_username"`

	// Fetch holds configuration for the fetch subcommand.
	Fetch FetchConfig `mapstructure:"fetch"`

	// Dashboard holds configuration for the dashboard subcommand.
	Dashboard DashboardConfig `mapstructure:"dashboard"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// FetchConfig holds configuration for game fetching.
type FetchConfig struct {
	// Platform is the source platform to fetch from (lichess, chesscom).
	Platform string `mapstructure:"platform"`

	// MaxGames caps the number of games fetched per run (0 = no cap).
	MaxGames int `mapstructure:"max_games"`

	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// DashboardConfig holds configuration for the stats server.
type DashboardConfig struct {
	// Port is the HTTP listen port.
	Port int `mapstructure:"port"`
}

// SeedConfig holds configuration for synthetic data generation.
type SeedConfig struct {
	// Games is the number of synthetic games to generate.
	Games int `mapstructure:"games"`

	// Seed fixes the random seed for reproducible output (0 = random).
	Seed uint64 `mapstructure:"seed"`
}

// DefaultDatabasePath returns the default warehouse file location,
// ~/.chessdash/games.duckdb.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "games.duckdb"
	}
	return filepath.Join(home, ".chessdash", "games.duckdb")
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DefaultDatabasePath(),
		LogLevel: "info",
		Fetch: FetchConfig{
			MaxGames:       0,
			TimeoutSeconds: 60,
		},
		Dashboard: DashboardConfig{
			Port: 8383,
		},
		Seed: SeedConfig{
			Games: 200,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./chessdash.yaml
// 3. ~/.config/chessdash/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("chessdash")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "chessdash"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// ValidateFetch checks configuration required for the fetch command.
func (c *Config) ValidateFetch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Fetch.Platform == "" {
		return fmt.Errorf("platform is required for fetch")
	}
	if c.Fetch.Platform != "lichess" && c.Fetch.Platform != "chesscom" {
		return fmt.Errorf("platform must be 'lichess' or 'chesscom'")
	}
	if c.Fetch.MaxGames < 0 {
		return fmt.Errorf("max_games must be non-negative")
	}
	if c.Fetch.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1")
	}
	return nil
}

// ValidateDashboard checks configuration required for the dashboard command.
func (c *Config) ValidateDashboard() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Dashboard.Port < 1 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Seed.Games < 1 {
		return fmt.Errorf("games must be at least 1")
	}
	return nil
}

// TrackedUsernames returns the configured platform usernames, dropping
// empty entries.
func (c *Config) TrackedUsernames() []string {
	var users []string
	if c.LichessUsername != "" {
		users = append(users, c.LichessUsername)
	}
	if c.ChesscomUsername != "" && c.ChesscomUsername != c.LichessUsername {
		users = append(users, c.ChesscomUsername)
	}
	return users
}
