// Package config provides configuration management for the bibliography normalizer.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultOutputPath is where normalized records are written when nothing else is configured.
const DefaultOutputPath = "biblio.bib"

// Configuration validation errors.
var (
	ErrMissingOutputPath        = errors.New("output.path is required")
	ErrInvalidMaxAttempts       = errors.New("input.retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("input.retry.initial_delay_ms must be non-negative")
	ErrInvalidMaxDelay          = errors.New("input.retry.max_delay_ms cannot be lower than initial_delay_ms")
	ErrInvalidBackoffMultiplier = errors.New("input.retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("input.retry.timeout_sec must be at least 1")
	ErrInvalidBufferSize        = errors.New("input.buffer_size_kb must be at least 1")
	ErrInvalidMaxEntryBytes     = errors.New("scanner.max_entry_bytes must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be one of: tagged, text, json")
)

// Config represents the complete normalizer configuration.
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	Input      InputConfig      `yaml:"input"`
	Scanner    ScannerConfig    `yaml:"scanner"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Path string `yaml:"path"`
	Sign bool   `yaml:"sign"`
}

// InputConfig defines how the source database is read.
type InputConfig struct {
	Retry        RetryPolicy `yaml:"retry"`
	BufferSizeKb int         `yaml:"buffer_size_kb"`
}

// RetryPolicy defines retry behavior for remote inputs.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// ScannerConfig bounds the entry scanner.
type ScannerConfig struct {
	MaxEntryBytes int `yaml:"max_entry_bytes"`
}

// ValidationConfig defines field grammar overrides.
type ValidationConfig struct {
	Patterns PatternsConfig `yaml:"patterns"`
}

// PatternsConfig defines regex overrides. Empty values keep the built-in grammar.
type PatternsConfig struct {
	Author  string `yaml:"author,omitempty"`
	Title   string `yaml:"title,omitempty"`
	Address string `yaml:"address,omitempty"`
	Pages   string `yaml:"pages,omitempty"`
	DOI     string `yaml:"doi,omitempty"`
	Month   string `yaml:"month,omitempty"`
	ISBN    string `yaml:"isbn,omitempty"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Input: InputConfig{
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        5000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
			BufferSizeKb: 16384,
		},
		Scanner: ScannerConfig{
			MaxEntryBytes: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "tagged",
		},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return data, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Output.Path == "" {
		return ErrMissingOutputPath
	}

	retry := c.Input.Retry
	if retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if retry.MaxDelayMs < retry.InitialDelayMs {
		return ErrInvalidMaxDelay
	}

	if retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Input.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	if c.Scanner.MaxEntryBytes < 1 {
		return ErrInvalidMaxEntryBytes
	}

	p := c.Validation.Patterns
	patterns := []struct {
		name, expr string
	}{
		{"author", p.Author},
		{"title", p.Title},
		{"address", p.Address},
		{"pages", p.Pages},
		{"doi", p.DOI},
		{"month", p.Month},
		{"isbn", p.ISBN},
	}

	for _, pat := range patterns {
		if pat.expr == "" {
			continue
		}

		if _, err := regexp.Compile(pat.expr); err != nil {
			return fmt.Errorf("validation.patterns.%s is invalid regex: %w", pat.name, err)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	validFormats := map[string]bool{"tagged": true, "text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// MaxInputBytes returns the input size limit in bytes.
func (ic *InputConfig) MaxInputBytes() int64 {
	return int64(ic.BufferSizeKb) * 1024
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Output: %s, Sign: %t, MaxAttempts: %d, MaxEntryBytes: %d}",
		c.Output.Path,
		c.Output.Sign,
		c.Input.Retry.MaxAttempts,
		c.Scanner.MaxEntryBytes,
	)
}
