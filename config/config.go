package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"infinisweeper/game"
)

// Config はサーバーとゲームの設定です
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Game   GameConfig   `mapstructure:"game"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	StaticDir   string `mapstructure:"static_dir"`
	MaxSessions int    `mapstructure:"max_sessions"`
	MaxWindow   int64  `mapstructure:"max_window"` // 盤面取得で許す1辺のマス数
	LogLevel    string `mapstructure:"log_level"`
}

type GameConfig struct {
	Density       int    `mapstructure:"density"`
	Seed          uint64 `mapstructure:"seed"` // 0ならセッションごとにランダム
	StepLimit     int    `mapstructure:"step_limit"`
	IdleLimit     int    `mapstructure:"idle_limit"`
	SafeThreshold uint8  `mapstructure:"safe_threshold"`
}

// Options はゲームエンジン用の設定に変換します
func (g GameConfig) Options() game.Options {
	return game.Options{
		Seed:          g.Seed,
		Density:       g.Density,
		StepLimit:     g.StepLimit,
		IdleLimit:     g.IdleLimit,
		SafeThreshold: g.SafeThreshold,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.max_sessions", 1024)
	v.SetDefault("server.max_window", 128)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("game.density", game.DefaultDensity)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.step_limit", game.DefaultStepLimit)
	v.SetDefault("game.idle_limit", game.DefaultIdleLimit)
	v.SetDefault("game.safe_threshold", 0)
}

// Default はファイルを読まずにデフォルト値と環境変数だけで設定を作ります
func Default() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SWEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load は YAML ファイルを読み込みます。path が空ならデフォルトと環境変数だけを使います。
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}

// Validate は明らかにおかしい値を弾きます
func (c *Config) Validate() error {
	switch {
	case c.Game.Density < 1:
		return errors.Errorf("game.density must be >= 1, got %d", c.Game.Density)
	case c.Game.StepLimit < 1:
		return errors.Errorf("game.step_limit must be >= 1, got %d", c.Game.StepLimit)
	case c.Game.IdleLimit < 1:
		return errors.Errorf("game.idle_limit must be >= 1, got %d", c.Game.IdleLimit)
	case c.Game.SafeThreshold > 8:
		return errors.Errorf("game.safe_threshold must be <= 8, got %d", c.Game.SafeThreshold)
	case c.Server.MaxSessions < 1:
		return errors.Errorf("server.max_sessions must be >= 1, got %d", c.Server.MaxSessions)
	case c.Server.MaxWindow < 1:
		return errors.Errorf("server.max_window must be >= 1, got %d", c.Server.MaxWindow)
	}
	if _, err := logrus.ParseLevel(c.Server.LogLevel); err != nil {
		return errors.Wrap(err, "server.log_level")
	}
	return nil
}

// Logger は設定されたレベルの logrus ロガーを作ります
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.Server.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
