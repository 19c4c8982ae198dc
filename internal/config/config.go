// Package config provides Viper-based configuration loading for the game
// server and world tooling.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Host is the bind address for the TCP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the listener.
	Port int `mapstructure:"port"`
	// GameID identifies the world this server instance runs.
	GameID string `mapstructure:"game_id"`
	// ReadTimeout is the per-read timeout for player connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for player connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig holds the data directories the server loads at startup.
type ContentConfig struct {
	// ItemsDir holds item catalog files (YAML or JSON).
	ItemsDir string `mapstructure:"items_dir"`
	// WorldDir holds location definition files.
	WorldDir string `mapstructure:"world_dir"`
	// SpellsDir holds spell template files. Optional.
	SpellsDir string `mapstructure:"spells_dir"`
	// ScriptsDir holds Lua rule scripts. Optional.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// ScriptInstructionLimit caps Lua opcodes per rule evaluation.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// LLMConfig holds settings for the command-routing model fallback.
type LLMConfig struct {
	// Enabled toggles the LLM routing stage. When false, unresolved input
	// degrades straight to suggestions.
	Enabled bool `mapstructure:"enabled"`
	// APIKey authenticates against the Anthropic API. Usually supplied via
	// the FABLEMUD_LLM_API_KEY environment variable.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier to route commands with.
	Model string `mapstructure:"model"`
	// Timeout bounds one routing call.
	Timeout time.Duration `mapstructure:"timeout"`
}

// PersistenceConfig holds save-file and auto-save settings.
type PersistenceConfig struct {
	// SaveDir is the directory holding world state files and backups.
	SaveDir string `mapstructure:"save_dir"`
	// KeepCount is the number of backups retained per game.
	KeepCount int `mapstructure:"keep_count"`
	// AutoSave toggles the background save loop.
	AutoSave bool `mapstructure:"auto_save"`
	// AutoSaveInterval is the minimum time between scheduled saves.
	AutoSaveInterval time.Duration `mapstructure:"auto_save_interval"`
	// BackupInterval is the time between scheduled backups.
	BackupInterval time.Duration `mapstructure:"backup_interval"`
	// DirtyThreshold forces a save once this many mutations accumulate.
	DirtyThreshold int `mapstructure:"dirty_threshold"`
}

// Config is the top-level application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Content     ContentConfig     `mapstructure:"content"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLLM(c.LLM); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePersistence(c.Persistence); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.GameID == "" {
		errs = append(errs, "server.game_id must not be empty")
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.ItemsDir == "" {
		errs = append(errs, "content.items_dir must not be empty")
	}
	if c.WorldDir == "" {
		errs = append(errs, "content.world_dir must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLLM(l LLMConfig) error {
	if !l.Enabled {
		return nil
	}
	var errs []string
	if l.APIKey == "" {
		errs = append(errs, "llm.api_key must not be empty when llm.enabled is true")
	}
	if l.Model == "" {
		errs = append(errs, "llm.model must not be empty when llm.enabled is true")
	}
	if l.Timeout < 0 {
		errs = append(errs, "llm.timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePersistence(p PersistenceConfig) error {
	var errs []string
	if p.SaveDir == "" {
		errs = append(errs, "persistence.save_dir must not be empty")
	}
	if p.KeepCount < 1 {
		errs = append(errs, fmt.Sprintf("persistence.keep_count must be >= 1, got %d", p.KeepCount))
	}
	if p.AutoSaveInterval < 0 {
		errs = append(errs, "persistence.auto_save_interval must not be negative")
	}
	if p.BackupInterval < 0 {
		errs = append(errs, "persistence.backup_interval must not be negative")
	}
	if p.DirtyThreshold < 0 {
		errs = append(errs, "persistence.dirty_threshold must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with FABLEMUD_ prefix
	v.SetEnvPrefix("FABLEMUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.game_id", "default")
	v.SetDefault("server.read_timeout", "5m")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.items_dir", "data/items")
	v.SetDefault("content.world_dir", "data/world")
	v.SetDefault("content.spells_dir", "")
	v.SetDefault("content.scripts_dir", "")
	v.SetDefault("content.script_instruction_limit", 100000)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.model", "claude-sonnet-4-5")
	v.SetDefault("llm.timeout", "10s")

	v.SetDefault("persistence.save_dir", "saves")
	v.SetDefault("persistence.keep_count", 10)
	v.SetDefault("persistence.auto_save", true)
	v.SetDefault("persistence.auto_save_interval", "300s")
	v.SetDefault("persistence.backup_interval", "3600s")
	v.SetDefault("persistence.dirty_threshold", 50)
}
