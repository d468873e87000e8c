// Package config loads server settings from defaults, an optional config.yaml
// and CHESS_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type Config struct {
	Addr                string
	AllowOrigins        string
	LogLevel            zerolog.Level
	LogPretty           bool
	MatchmakingInterval time.Duration
	ReadBufferSize      int
	WriteBufferSize     int
}

// Origins splits the comma-separated AllowOrigins list.
func (c *Config) Origins() []string {
	origins := lo.Map(strings.Split(c.AllowOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	})
	return lo.Compact(origins)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.allow_origins", "http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("matchmaking.interval", time.Second)
	v.SetDefault("ws.read_buffer_size", 1024)
	v.SetDefault("ws.write_buffer_size", 1024)
}

// Load reads the configuration. configPaths are searched for config.yaml; a
// missing file is not an error.
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("chess")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if len(configPaths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	level, err := zerolog.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	cfg := &Config{
		Addr:                v.GetString("server.addr"),
		AllowOrigins:        v.GetString("server.allow_origins"),
		LogLevel:            level,
		LogPretty:           v.GetBool("log.pretty"),
		MatchmakingInterval: v.GetDuration("matchmaking.interval"),
		ReadBufferSize:      v.GetInt("ws.read_buffer_size"),
		WriteBufferSize:     v.GetInt("ws.write_buffer_size"),
	}
	if cfg.MatchmakingInterval <= 0 {
		return nil, fmt.Errorf("matchmaking.interval must be positive, got %s", cfg.MatchmakingInterval)
	}
	return cfg, nil
}
