package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultEnv           = "local"
	defaultConfigDir     = ".wesync"
	defaultVersion       = "2.0"
	defaultSliceSize     = 64 << 10
)

type Config struct {
	Env           string        `mapstructure:"env"`
	ServerAddress string        `mapstructure:"server_address"`
	Username      string        `mapstructure:"username"`
	Version       string        `mapstructure:"version"`
	EnableTLS     bool          `mapstructure:"enable_tls"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ConfigDir     string        `mapstructure:"config_dir"`
	DataPath      string        `mapstructure:"data_path"`
	SliceSize     int           `mapstructure:"slice_size"`
}

// Load собирает конфигурацию клиента из .env, переменных WESYNC_* и файла path.
// Пустой path ищет config.yaml в ~/.wesync и текущей директории.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("env", defaultEnv)
	v.SetDefault("server_address", defaultServerAddress)
	v.SetDefault("username", "")
	v.SetDefault("version", defaultVersion)
	v.SetDefault("enable_tls", false)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("config_dir", "")
	v.SetDefault("data_path", "")
	v.SetDefault("slice_size", defaultSliceSize)

	v.SetEnvPrefix("wesync")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(home, defaultConfigDir))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(home, defaultConfigDir)
	}
	if cfg.DataPath == "" {
		cfg.DataPath = filepath.Join(cfg.ConfigDir, "cache.db")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.SliceSize <= 0 {
		return fmt.Errorf("slice_size must be positive, got %d", c.SliceSize)
	}
	return nil
}

// BaseURL адрес http API
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

// NoticeURL адрес websocket уведомлений
func (c *Config) NoticeURL() string {
	if c.EnableTLS {
		return "wss://" + c.ServerAddress + "/api/notices"
	}
	return "ws://" + c.ServerAddress + "/api/notices"
}
