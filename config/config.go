/*
Package config loads the configuration of layoutcore applications.

Configuration values are read, in increasing order of precedence, from
built-in defaults, an optional configuration file (YAML, TOML or JSON) and
environment variables prefixed with LAYOUTCORE_. Keys are hierarchical;
the environment variable for a key replaces dots and dashes with
underscores, e.g.

    engine.sequential-threshold  →  LAYOUTCORE_ENGINE_SEQUENTIAL_THRESHOLD

List values (the damage property sets) are given as comma separated
strings in the environment.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/dom/style/restyle"
	"github.com/npillmayer/layoutcore/engine"
	"github.com/npillmayer/layoutcore/frame/layout"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration
// values.
const EnvPrefix = "LAYOUTCORE"

// Config is the complete configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Damage   DamageConfig   `mapstructure:"damage" yaml:"damage"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// EngineConfig controls passes and the worker pool.
type EngineConfig struct {
	Workers             int `mapstructure:"workers" yaml:"workers"` // 0 = number of CPUs
	SequentialThreshold int `mapstructure:"sequential-threshold" yaml:"sequential-threshold"`
	LeafBatch           int `mapstructure:"leaf-batch" yaml:"leaf-batch"`
	MaxDepth            int `mapstructure:"max-depth" yaml:"max-depth"`
	MaxRetries          int `mapstructure:"max-retries" yaml:"max-retries"`
}

// ViewportConfig describes the device documents are laid out for, in CSS
// pixels.
type ViewportConfig struct {
	Width            float64 `mapstructure:"width" yaml:"width"`
	Height           float64 `mapstructure:"height" yaml:"height"`
	DevicePixelRatio float64 `mapstructure:"device-pixel-ratio" yaml:"device-pixel-ratio"`
}

// DamageConfig lists the properties whose change causes more than a
// repaint. See restyle.Sets.
type DamageConfig struct {
	ReflowAncestors []string `mapstructure:"reflow-ancestors" yaml:"reflow-ancestors"`
	ReflowSubtree   []string `mapstructure:"reflow-subtree" yaml:"reflow-subtree"`
	Reconstruct     []string `mapstructure:"reconstruct" yaml:"reconstruct"`
}

// LogConfig configures application logging.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`     // console or json
	File       string `mapstructure:"file" yaml:"file"`         // empty: no log file
	MaxSize    int    `mapstructure:"max-size" yaml:"max-size"` // megabytes
	MaxBackups int    `mapstructure:"max-backups" yaml:"max-backups"`
	MaxAge     int    `mapstructure:"max-age" yaml:"max-age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults registers the default of every key with v. Keys without a
// default are not picked up from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("engine.workers", 0)
	v.SetDefault("engine.sequential-threshold", tree.DefaultThreshold)
	v.SetDefault("engine.leaf-batch", tree.DefaultLeafBatch)
	v.SetDefault("engine.max-depth", layout.DefaultMaxDepth)
	v.SetDefault("engine.max-retries", engine.DefaultMaxRetries)

	v.SetDefault("viewport.width", css.DefaultViewport.Width)
	v.SetDefault("viewport.height", css.DefaultViewport.Height)
	v.SetDefault("viewport.device-pixel-ratio", css.DefaultViewport.DevicePixelRatio)

	sets := restyle.DefaultSets()
	v.SetDefault("damage.reflow-ancestors", sets.ReflowAncestors)
	v.SetDefault("damage.reflow-subtree", sets.ReflowSubtree)
	v.SetDefault("damage.reconstruct", sets.Reconstruct)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max-size", 100)
	v.SetDefault("log.max-backups", 3)
	v.SetDefault("log.max-age", 28)
	v.SetDefault("log.compress", false)
}

// Load reads the configuration. If file is empty, a file named
// layoutcore.{yaml,toml,json} in the working directory is used if present.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("layoutcore")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return FromViper(v)
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := FromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// FromViper extracts and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch {
	case c.Engine.Workers < 0:
		return errors.New("engine.workers must not be negative")
	case c.Engine.SequentialThreshold < 0:
		return errors.New("engine.sequential-threshold must not be negative")
	case c.Engine.LeafBatch < 0:
		return errors.New("engine.leaf-batch must not be negative")
	case c.Engine.MaxDepth <= 0:
		return errors.New("engine.max-depth must be a positive integer")
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return errors.New("viewport.width and viewport.height must be positive")
	case c.Viewport.DevicePixelRatio <= 0:
		return errors.New("viewport.device-pixel-ratio must be positive")
	}
	for key, props := range map[string][]string{
		"damage.reflow-ancestors": c.Damage.ReflowAncestors,
		"damage.reflow-subtree":   c.Damage.ReflowSubtree,
		"damage.reconstruct":      c.Damage.Reconstruct,
	} {
		for _, p := range props {
			if _, ok := style.Lookup(strings.ToLower(strings.TrimSpace(p))); !ok {
				return fmt.Errorf("%s: unknown property %q", key, p)
			}
		}
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, is %q", c.Log.Format)
	}
	return nil
}

// ViewportOf returns the configured viewport.
func (c *Config) ViewportOf() css.Viewport {
	return css.Viewport{
		Width:            c.Viewport.Width,
		Height:           c.Viewport.Height,
		DevicePixelRatio: c.Viewport.DevicePixelRatio,
	}
}

// DamageSets returns the configured property sets for damage
// classification.
func (c *Config) DamageSets() restyle.Sets {
	return restyle.Sets{
		ReflowAncestors: c.Damage.ReflowAncestors,
		ReflowSubtree:   c.Damage.ReflowSubtree,
		Reconstruct:     c.Damage.Reconstruct,
	}
}

// EngineOptions translates the configuration into options for
// engine.New.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithWorkers(c.Engine.Workers),
		engine.WithThreshold(c.Engine.SequentialThreshold),
		engine.WithLeafBatch(c.Engine.LeafBatch),
		engine.WithMaxDepth(c.Engine.MaxDepth),
		engine.WithMaxRetries(c.Engine.MaxRetries),
		engine.WithViewport(c.ViewportOf()),
		engine.WithDamageSets(c.DamageSets()),
	}
}
