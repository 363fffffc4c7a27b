// Package config loads interpreter settings from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/lox/pkg/evaluator"
)

// File names searched by Load.
const (
	ProjectFile = ".loxrc.yaml"
	UserDir     = ".lox"
	UserFile    = "config.yaml"
)

// Config is the effective interpreter configuration.
type Config struct {
	Budget      evaluator.Budget  `yaml:"budget"`
	Log         LogConfig         `yaml:"log"`
	Repl        ReplConfig        `yaml:"repl"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`

	// Source is the file the configuration was read from, empty for defaults.
	Source string `yaml:"-"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ReplConfig struct {
	Prompt       string `yaml:"prompt"`
	Continuation string `yaml:"continuation"`
	History      string `yaml:"history"`
}

type DiagnosticsConfig struct {
	Format string `yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Budget: evaluator.Budget{MaxCallDepth: evaluator.DefaultMaxCallDepth},
		Log:    LogConfig{Level: "warn"},
		Repl: ReplConfig{
			Prompt:       "> ",
			Continuation: "... ",
		},
		Diagnostics: DiagnosticsConfig{Format: "text"},
	}
}

// Load reads the configuration for a project.
// Precedence: project (.loxrc.yaml) → user (~/.lox/config.yaml) → defaults.
// The first file found wins; missing files are skipped.
func Load(projectDir string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return LoadFrom(projectDir, home)
}

// LoadFrom is Load with an explicit home directory.
func LoadFrom(projectDir, homeDir string) (*Config, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if homeDir != "" {
		candidates = append(candidates, filepath.Join(homeDir, UserDir, UserFile))
	}
	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Defaults(), nil
}

// LoadFile reads one configuration file. Fields it omits keep their defaults;
// unknown fields are an error.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := Defaults()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Budget.MaxCallDepth < 0 {
		return fmt.Errorf("budget.maxCallDepth must not be negative")
	}
	if c.Budget.MaxIterations < 0 {
		return fmt.Errorf("budget.maxIterations must not be negative")
	}
	if c.Budget.TimeMs < 0 {
		return fmt.Errorf("budget.timeMs must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Diagnostics.Format {
	case "text", "json":
	default:
		return fmt.Errorf("diagnostics.format must be text or json, got %q", c.Diagnostics.Format)
	}
	return nil
}

// ParseLevel converts a level name into a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log.level: unknown level %q", name)
	}
	return level, nil
}

// Encode renders the configuration as YAML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: encoder close: %w", err)
	}
	return buf.Bytes(), nil
}

// HistoryPath returns the REPL history file, defaulting to ~/.lox/history.
func (c *Config) HistoryPath() string {
	if c.Repl.History != "" {
		return c.Repl.History
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserDir, "history")
}
