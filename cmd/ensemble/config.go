package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFile = ".ensemble.yml"

// Config is the optional per-user settings file.
type Config struct {
	Prompt      string   `yaml:"prompt"`
	HistoryFile string   `yaml:"history_file"`
	Preload     []string `yaml:"preload"`
	LogLevel    string   `yaml:"log_level"`
}

func defaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Prompt:      "user> ",
		HistoryFile: filepath.Join(home, ".ensemble_history"),
		LogLevel:    "warn",
	}
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadConfig reads path over the defaults. A missing file is not an error
// when optional is set.
func LoadConfig(path string, optional bool) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs ValidationError
	if c.Prompt == "" {
		errs.Issues = append(errs.Issues, "prompt must not be empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	for i, p := range c.Preload {
		if strings.TrimSpace(p) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("preload[%d] must be a non-empty path", i))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
