// Package config loads engine settings from YAML.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"ecmalite/pkg/errors"
	"ecmalite/pkg/vm"
)

// Config is the parsed contents of an engine config file.
type Config struct {
	Path string `yaml:"-"`

	GC  GCConfig  `yaml:"gc"`
	Log LogConfig `yaml:"log"`
}

// GCConfig tunes the collector. Zero thresholds disable automatic passes.
type GCConfig struct {
	MinorThreshold int `yaml:"minor_threshold"`
	PromotionAge   int `yaml:"promotion_age"`
	MajorEvery     int `yaml:"major_every"`
}

type LogConfig struct {
	Verbosity int `yaml:"verbosity"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	opts := vm.DefaultGCOptions()
	return &Config{
		GC: GCConfig{
			MinorThreshold: opts.MinorThreshold,
			PromotionAge:   opts.PromotionAge,
			MajorEvery:     opts.MajorEvery,
		},
	}
}

// Load reads and validates the config file at path. Settings missing from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, (&errors.ConfigError{Path: path, Msg: "cannot read file"}).CausedBy(err)
	}
	return parse(data, path)
}

// Parse decodes and validates config YAML held in memory.
func Parse(data []byte) (*Config, error) {
	return parse(data, "")
}

func parse(data []byte, path string) (*Config, error) {
	cfg := Default()
	cfg.Path = path

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, (&errors.ConfigError{Path: path, Msg: "invalid YAML"}).CausedBy(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.GC.MinorThreshold < 0:
		return c.invalid("gc.minor_threshold must not be negative, got %d", c.GC.MinorThreshold)
	case c.GC.PromotionAge < 1 || c.GC.PromotionAge > 255:
		return c.invalid("gc.promotion_age must be between 1 and 255, got %d", c.GC.PromotionAge)
	case c.GC.MajorEvery < 0:
		return c.invalid("gc.major_every must not be negative, got %d", c.GC.MajorEvery)
	case c.Log.Verbosity < 0:
		return c.invalid("log.verbosity must not be negative, got %d", c.Log.Verbosity)
	}
	return nil
}

func (c *Config) invalid(format string, args ...any) error {
	return &errors.ConfigError{Path: c.Path, Msg: fmt.Sprintf(format, args...)}
}

// GCOptions converts the gc section for vm.NewHeap.
func (c *Config) GCOptions() vm.GCOptions {
	return vm.GCOptions{
		MinorThreshold: c.GC.MinorThreshold,
		PromotionAge:   c.GC.PromotionAge,
		MajorEvery:     c.GC.MajorEvery,
	}
}
