package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinisweeper/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, game.DefaultDensity, cfg.Game.Density)
	assert.Equal(t, game.DefaultStepLimit, cfg.Game.StepLimit)
	assert.Equal(t, game.DefaultIdleLimit, cfg.Game.IdleLimit)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultBadEnv(t *testing.T) {
	t.Setenv("SWEEPER_GAME_DENSITY", "dense")
	_, err := Default()
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9999"
  max_window: 64
  log_level: debug
game:
  density: 5
  seed: 42
  step_limit: 250
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, int64(64), cfg.Server.MaxWindow)
	assert.Equal(t, 1024, cfg.Server.MaxSessions, "unset keys keep defaults")
	assert.Equal(t, logrus.DebugLevel, cfg.Logger().GetLevel())

	opts := cfg.Game.Options()
	assert.Equal(t, uint64(42), opts.Seed)
	assert.Equal(t, 5, opts.Density)
	assert.Equal(t, 250, opts.StepLimit)
	assert.Equal(t, game.DefaultIdleLimit, opts.IdleLimit)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SWEEPER_GAME_DENSITY", "10")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Game.Density)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"density", func(c *Config) { c.Game.Density = 0 }},
		{"step limit", func(c *Config) { c.Game.StepLimit = -1 }},
		{"idle limit", func(c *Config) { c.Game.IdleLimit = 0 }},
		{"safe threshold", func(c *Config) { c.Game.SafeThreshold = 9 }},
		{"sessions", func(c *Config) { c.Server.MaxSessions = 0 }},
		{"window", func(c *Config) { c.Server.MaxWindow = 0 }},
		{"log level", func(c *Config) { c.Server.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
