package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// SALES_ADMIN_API_BASE_URL.
const EnvPrefix = "SALES_ADMIN"

// Config holds application configuration.
type Config struct {
	API  APIConfig  `mapstructure:"api"`
	List ListConfig `mapstructure:"list"`
	Log  LogConfig  `mapstructure:"log"`
	Stub StubConfig `mapstructure:"stub"`
}

// APIConfig points at the sales backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ListConfig holds listing settings.
type ListConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StubConfig configures the local backend stub.
type StubConfig struct {
	Addr string `mapstructure:"addr"`
	// Seed is a YAML fixture file; empty starts with no data.
	Seed      string `mapstructure:"seed"`
	FailStats bool   `mapstructure:"fail_stats"`
}

// Load reads configuration from path (or ./config.yaml when path is empty
// and the file exists) and from the environment.
func Load(path string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.base_url", "http://localhost:8081")
	v.SetDefault("api.timeout", 0)
	v.SetDefault("list.page_size", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("stub.addr", ":8081")
	v.SetDefault("stub.seed", "")
	v.SetDefault("stub.fail_stats", false)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Un archivo pedido explícitamente tiene que existir.
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.List.PageSize <= 0 {
		return Config{}, fmt.Errorf("list.page_size must be positive, got %d", c.List.PageSize)
	}
	return c, nil
}
