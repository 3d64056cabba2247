package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mcoot/baldagame/internal/api"
	"github.com/mcoot/baldagame/internal/services/auth"
	"github.com/mcoot/baldagame/internal/services/lobby"
	"github.com/mcoot/baldagame/internal/services/turntimer"
	redisstorage "github.com/mcoot/baldagame/internal/storage/redis"
)

const (
	// EnvPrefix prefixes every environment override
	EnvPrefix = "BALDA"

	// FileEnv names the variable pointing at an optional YAML config file
	FileEnv = "BALDA_CONFIG"

	defaultFile = "config.yaml"
)

// Config is the process configuration of the server
type Config struct {
	Server          api.ServerConfig
	StorageType     string
	Redis           redisstorage.Config
	DictionaryPaths []string
	Turn            turntimer.Config
	Auth            auth.Config
	Lobby           lobby.Config
	TelegramToken   string
	TelegramDebug   bool
	LogLevel        slog.Level
}

// Load reads the configuration from defaults, the optional config file and
// BALDA_ environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return load(viper.New(), os.Getenv(FileEnv))
}

// LoadFile is Load with an explicit config file path
func LoadFile(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readFile(v, path); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: api.ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		StorageType: strings.ToLower(v.GetString("storage.type")),
		Redis: redisstorage.Config{
			URL:             v.GetString("redis.url"),
			PoolSize:        v.GetInt("redis.pool_size"),
			MinIdleConns:    v.GetInt("redis.min_idle_conns"),
			GuestProfileTTL: v.GetDuration("redis.guest_profile_ttl"),
			GameTTL:         v.GetDuration("redis.game_ttl"),
		},
		DictionaryPaths: stringList(v, "dictionary.paths"),
		Turn: turntimer.Config{
			Timeout:        v.GetDuration("turn.timeout"),
			ReminderBefore: v.GetDuration("turn.reminder_before"),
		},
		Auth: auth.Config{
			SessionDuration: v.GetDuration("auth.session_duration"),
		},
		Lobby: lobby.Config{
			JoinCodeLength: v.GetInt("lobby.join_code_length"),
		},
		TelegramToken: v.GetString("telegram.token"),
		TelegramDebug: v.GetBool("telegram.debug"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	server := api.DefaultServerConfig()
	v.SetDefault("server.host", server.Host)
	v.SetDefault("server.port", server.Port)
	v.SetDefault("server.read_timeout", server.ReadTimeout)
	v.SetDefault("server.write_timeout", server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	v.SetDefault("storage.type", "memory")

	rd := redisstorage.DefaultConfig()
	v.SetDefault("redis.url", rd.URL)
	v.SetDefault("redis.pool_size", rd.PoolSize)
	v.SetDefault("redis.min_idle_conns", rd.MinIdleConns)
	v.SetDefault("redis.guest_profile_ttl", rd.GuestProfileTTL)
	v.SetDefault("redis.game_ttl", rd.GameTTL)

	v.SetDefault("dictionary.paths", []string{})

	turn := turntimer.DefaultConfig()
	v.SetDefault("turn.timeout", turn.Timeout)
	v.SetDefault("turn.reminder_before", turn.ReminderBefore)

	v.SetDefault("auth.session_duration", auth.DefaultConfig().SessionDuration)
	v.SetDefault("lobby.join_code_length", lobby.DefaultConfig().JoinCodeLength)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.debug", false)

	v.SetDefault("log.level", "info")
}

// readFile merges a YAML file. Without an explicit path a missing
// ./config.yaml is fine.
func readFile(v *viper.Viper, path string) error {
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	if _, err := os.Stat(defaultFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(defaultFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", defaultFile, err)
	}
	return nil
}

// stringList accepts both YAML lists and comma separated env values
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	switch c.StorageType {
	case "memory", "redis":
	default:
		return fmt.Errorf("storage.type must be memory or redis, got %q", c.StorageType)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Turn.Timeout <= 0 {
		return errors.New("turn.timeout must be positive")
	}
	if c.Turn.ReminderBefore < 0 || c.Turn.ReminderBefore >= c.Turn.Timeout {
		return errors.New("turn.reminder_before must be shorter than turn.timeout")
	}
	if c.Lobby.JoinCodeLength < 4 {
		return errors.New("lobby.join_code_length must be at least 4")
	}
	return nil
}
