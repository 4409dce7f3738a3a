// Package config loads service configuration from configs/config.yml and
// EGGTIMER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "EGGTIMER"
	defaultConfigName = "config"
	defaultConfigDir  = "configs"
)

// Channel describes a notification channel (id, user-facing name, sound).
type Channel struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Sound       bool   `mapstructure:"sound"`
}

// PushSchedule publishes a push message to Topic on every Cron occurrence.
type PushSchedule struct {
	Topic string `mapstructure:"topic"`
	Cron  string `mapstructure:"cron"`
	Title string `mapstructure:"title"`
	Body  string `mapstructure:"body"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// TimerConfig holds the duration options. Options[0] is reserved for the
// short test duration; every other entry is a minute count.
type TimerConfig struct {
	Options      []int         `mapstructure:"options"`
	TestDuration time.Duration `mapstructure:"test_duration"`
	Tick         time.Duration `mapstructure:"tick"`
}

type NotifyConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	AppName  string        `mapstructure:"app_name"`
	Snooze   time.Duration `mapstructure:"snooze"`
	Channels []Channel     `mapstructure:"channels"`
}

type PushConfig struct {
	DefaultChannel string         `mapstructure:"default_channel"`
	Schedules      []PushSchedule `mapstructure:"schedules"`
}

type WSConfig struct {
	PingPeriod time.Duration `mapstructure:"ping_period"`
}

// Config is the root configuration tree.
type Config struct {
	Port   string       `mapstructure:"port"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Timer  TimerConfig  `mapstructure:"timer"`
	Notify NotifyConfig `mapstructure:"notify"`
	Push   PushConfig   `mapstructure:"push"`
	WS     WSConfig     `mapstructure:"ws"`
}

var (
	ErrNoOptions         = errors.New("timer.options must contain the reserved test slot and at least one minute value")
	ErrBadOption         = errors.New("timer.options minute values must be positive")
	ErrNoSigningKey      = errors.New("auth.signing_key must be set")
	ErrUnknownPushTarget = errors.New("push.default_channel does not name a configured channel")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "eggtimer.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("timer.options", []int{0, 5, 10, 15, 20})
	v.SetDefault("timer.test_duration", 10*time.Second)
	v.SetDefault("timer.tick", time.Second)
	v.SetDefault("notify.enabled", true)
	v.SetDefault("notify.app_name", "eggtimer")
	v.SetDefault("notify.snooze", time.Minute)
	v.SetDefault("notify.channels", []map[string]any{
		{"id": "egg", "name": "Egg", "description": "Egg timer alarms", "sound": true},
		{"id": "breakfast", "name": "Breakfast", "description": "Time for breakfast", "sound": true},
	})
	v.SetDefault("push.default_channel", "breakfast")
	v.SetDefault("ws.ping_period", 54*time.Second)
}

// Load reads configuration. When path is empty, configs/config.yml is used
// if present; a missing default file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(defaultConfigDir)
		v.SetConfigName(defaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants the services rely on.
func (c Config) Validate() error {
	if len(c.Timer.Options) < 2 {
		return ErrNoOptions
	}
	for i, m := range c.Timer.Options[1:] {
		if m <= 0 {
			return fmt.Errorf("%w: index %d is %d", ErrBadOption, i+1, m)
		}
	}
	if c.Timer.TestDuration <= 0 {
		return fmt.Errorf("timer.test_duration must be positive, got %s", c.Timer.TestDuration)
	}
	if c.Timer.Tick <= 0 {
		return fmt.Errorf("timer.tick must be positive, got %s", c.Timer.Tick)
	}
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return ErrNoSigningKey
	}
	if c.Push.DefaultChannel != "" && !c.hasChannel(c.Push.DefaultChannel) {
		return fmt.Errorf("%w: %q", ErrUnknownPushTarget, c.Push.DefaultChannel)
	}
	return nil
}

func (c Config) hasChannel(id string) bool {
	for _, ch := range c.Notify.Channels {
		if ch.ID == id {
			return true
		}
	}
	return false
}
