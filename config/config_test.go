package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/layoutcore/dom/style/restyle"
	"github.com/npillmayer/layoutcore/engine"
	"github.com/npillmayer/layoutcore/frame/layout"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0, cfg.Engine.Workers)
	assert.Equal(t, 32, cfg.Engine.SequentialThreshold)
	assert.Equal(t, layout.DefaultMaxDepth, cfg.Engine.MaxDepth)
	assert.Equal(t, 800.0, cfg.Viewport.Width)
	assert.Equal(t, 600.0, cfg.Viewport.Height)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, restyle.DefaultSets().Reconstruct, cfg.Damage.Reconstruct)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "layoutcore.yaml")
	yaml := `
engine:
  workers: 4
  sequential-threshold: 8
viewport:
  width: 1024
damage:
  reconstruct: [display, float]
log:
  format: json
`
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))
	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, 8, cfg.Engine.SequentialThreshold)
	assert.Equal(t, 16, cfg.Engine.LeafBatch, "unset keys keep their defaults")
	assert.Equal(t, 1024.0, cfg.Viewport.Width)
	assert.Equal(t, 600.0, cfg.Viewport.Height)
	assert.Equal(t, []string{"display", "float"}, cfg.Damage.Reconstruct)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "layoutcore.yaml")
	require.NoError(t, os.WriteFile(file, []byte("engine:\n  workers: 4\n"), 0o644))
	t.Setenv("LAYOUTCORE_ENGINE_WORKERS", "2")
	t.Setenv("LAYOUTCORE_ENGINE_MAX_DEPTH", "64")
	t.Setenv("LAYOUTCORE_LOG_LEVEL", "debug")
	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Engine.Workers)
	assert.Equal(t, 64, cfg.Engine.MaxDepth)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestMissingDefaultFileIsNoError(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 800.0, cfg.Viewport.Width)
}

func TestExplicitFileMustExist(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	cases := map[string]func(*Config){
		"engine.workers":        func(c *Config) { c.Engine.Workers = -1 },
		"engine.max-depth":      func(c *Config) { c.Engine.MaxDepth = 0 },
		"viewport.width":        func(c *Config) { c.Viewport.Width = 0 },
		"device-pixel-ratio":    func(c *Config) { c.Viewport.DevicePixelRatio = -1 },
		"log.format":            func(c *Config) { c.Log.Format = "xml" },
		"damage.reconstruct":    func(c *Config) { c.Damage.Reconstruct = []string{"no-such-property"} },
		"damage.reflow-subtree": func(c *Config) { c.Damage.ReflowSubtree = append(c.Damage.ReflowSubtree, "bogus") },
	}
	for want, mutate := range cases {
		cfg := Default()
		require.NoError(t, cfg.Validate())
		mutate(cfg)
		err := cfg.Validate()
		if assert.Error(t, err, want) {
			assert.Contains(t, err.Error(), want)
		}
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine.Workers = 3
	cfg.Engine.LeafBatch = 5
	cfg.Viewport.Width = 320
	var opts engine.Options
	for _, opt := range cfg.EngineOptions() {
		opt(&opts)
	}
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, 5, opts.LeafBatch)
	assert.Equal(t, 32, opts.Threshold)
	assert.Equal(t, 320.0, opts.Viewport.Width)
	assert.Equal(t, cfg.Damage.ReflowAncestors, opts.Damage.ReflowAncestors)
}
