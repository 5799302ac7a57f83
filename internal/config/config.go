// Package config loads and persists the dirmap configuration file.
//
// The file is YAML. A missing file yields Default. Writes are serialized with
// an exclusive lock on a sibling ".lock" file and replace the file atomically,
// so concurrent invocations never observe a half written configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/idelchi/dirmap/internal/exclude"
)

// FileName is the name of the configuration file inside the config directory.
const FileName = "config.yaml"

// Canvas is the drawing area the treemap is laid out on.
type Canvas struct {
	// Width of the canvas in pixels.
	Width float64 `yaml:"width"`
	// Height of the canvas in pixels.
	Height float64 `yaml:"height"`
	// Padding is the inset applied before laying out.
	Padding float64 `yaml:"padding"`
}

// Config represents the dirmap configuration options.
type Config struct {
	// Excludes are the persistent exclusion rules.
	Excludes []exclude.Rule `yaml:"excludes"`
	// CaseSensitive switches glob and token matching to exact case.
	CaseSensitive bool `yaml:"case_sensitive"`
	// Canvas is the default layout area.
	Canvas Canvas `yaml:"canvas"`
	// Top is the number of entries ranked by the top command.
	Top int `yaml:"top"`
	// ProgressInterval is the cadence of progress updates on a terminal.
	ProgressInterval time.Duration `yaml:"progress_interval"`
	// LogLevel sets the logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Excludes: []exclude.Rule{},
		Canvas: Canvas{
			Width:   1000,
			Height:  600,
			Padding: 6,
		},
		Top:              10,
		ProgressInterval: 500 * time.Millisecond,
		LogLevel:         "info",
	}
}

// Path returns the default location of the configuration file.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}

	return filepath.Join(dir, "dirmap", FileName), nil
}

// Load reads the configuration at path on top of the defaults. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for values no command can work with.
func (c *Config) Validate() error {
	var errs []error

	for _, rule := range c.Excludes {
		if err := rule.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Canvas.Width < 0 || c.Canvas.Height < 0 {
		errs = append(errs, fmt.Errorf("canvas size %gx%g must not be negative", c.Canvas.Width, c.Canvas.Height))
	}

	if c.Canvas.Padding < 0 {
		errs = append(errs, fmt.Errorf("canvas padding %g must not be negative", c.Canvas.Padding))
	}

	if c.Top < 0 {
		errs = append(errs, fmt.Errorf("top %d must not be negative", c.Top))
	}

	if c.ProgressInterval < 0 {
		errs = append(errs, fmt.Errorf("progress interval %v must not be negative", c.ProgressInterval))
	}

	return errors.Join(errs...)
}

// Save writes cfg to path while holding the config lock.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return lockAndWrite(path, data)
}

// Update loads the configuration at path, applies fn and saves the result, all
// under the config lock so concurrent updates are not lost.
func Update(path string, fn func(*Config) error) (*Config, error) {
	lock, err := acquire(path)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock() //nolint:errcheck // Releasing is best effort once the write is done

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := fn(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	if err := atomicWrite(path, data); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AddRules appends rules that are not configured yet and returns how many were added.
func (c *Config) AddRules(rules ...exclude.Rule) int {
	added := 0

	for _, rule := range rules {
		if slices.Contains(c.Excludes, rule) {
			continue
		}

		c.Excludes = append(c.Excludes, rule)
		added++
	}

	return added
}

// RemoveRules drops every configured rule equal to one of rules and returns how
// many were removed.
func (c *Config) RemoveRules(rules ...exclude.Rule) int {
	before := len(c.Excludes)

	c.Excludes = slices.DeleteFunc(c.Excludes, func(r exclude.Rule) bool {
		return slices.Contains(rules, r)
	})

	return before - len(c.Excludes)
}

// Matcher compiles the configured rules, together with extra rules given on
// the command line, honoring the configured case policy.
func (c *Config) Matcher(extra ...exclude.Rule) (*exclude.Matcher, error) {
	rules := slices.Concat(c.Excludes, extra)

	return exclude.NewMatcher(rules, exclude.WithCaseSensitive(c.CaseSensitive))
}
