package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultConfigName = "pagichat.yaml"

// fileConfig holds everything the CLI reads from its yaml config file and
// PAGICHAT_* environment variables.
type fileConfig struct {
	Server         string        `mapstructure:"server" yaml:"server"`
	StatsURL       string        `mapstructure:"stats_url" yaml:"stats_url"`
	Name           string        `mapstructure:"name" yaml:"name"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	StoreDir       string        `mapstructure:"store_dir" yaml:"store_dir"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	StatsInterval  time.Duration `mapstructure:"stats_interval" yaml:"stats_interval"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Server:         "ws://localhost:8080/ws/chat",
		StatsURL:       "http://localhost:8080/api/stats",
		LogLevel:       "info",
		StoreDir:       ".pagichat",
		ReconnectDelay: 2 * time.Second,
		StatsInterval:  10 * time.Second,
	}
}

// loadConfig builds configuration from defaults, an optional config file, and
// env vars. Precedence: defaults < config file < env vars < flag overrides
// (applied by the caller).
func loadConfig(logger zerolog.Logger, explicitPath string) (fileConfig, error) {
	cfg := defaultFileConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("server", cfg.Server)
	v.SetDefault("stats_url", cfg.StatsURL)
	v.SetDefault("name", cfg.Name)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("store_dir", cfg.StoreDir)
	v.SetDefault("reconnect_delay", cfg.ReconnectDelay)
	v.SetDefault("stats_interval", cfg.StatsInterval)

	v.SetEnvPrefix("PAGICHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
		} else {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg fileConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
