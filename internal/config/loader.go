// Package config loads application configuration.
//
// Precedence, highest first: runtime overrides, environment variables
// (BUCKETREE_ prefix), config file (bucketree.yaml), built-in defaults.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Provider ProviderConfig `mapstructure:"provider"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ProviderConfig configures the default storage provider.
type ProviderConfig struct {
	// Type is "s3" or "file".
	Type string `mapstructure:"type"`

	// S3 settings.
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	Profile        string `mapstructure:"profile"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`

	// File provider settings.
	BaseDir string `mapstructure:"base_dir"`
}

// SnapshotConfig bounds container snapshots.
type SnapshotConfig struct {
	MaxObjects int     `mapstructure:"max_objects"`
	RateLimit  float64 `mapstructure:"rate_limit"`
}

const envPrefix = "BUCKETREE"

var (
	configMu  sync.RWMutex
	appConfig *Config
)

// setDefaults registers all built-in defaults on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)

	v.SetDefault("provider.type", "s3")
	v.SetDefault("provider.region", "")
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.profile", "")
	v.SetDefault("provider.force_path_style", false)
	v.SetDefault("provider.base_dir", "")

	v.SetDefault("snapshot.max_objects", 2_000_000)
	v.SetDefault("snapshot.rate_limit", 0.0)
}

// Load builds the configuration and stores it as the process config.
//
// Optional overrides take precedence over environment and file values;
// later maps win over earlier ones. The config file is optional: a
// missing bucketree.yaml is not an error.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	_ = ctx

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("bucketree")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/bucketree")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// Runtime overrides use Set so they outrank environment variables.
	for _, override := range overrides {
		applyOverrides(v, "", override)
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	configMu.Lock()
	appConfig = &cfg
	configMu.Unlock()

	return &cfg, nil
}

// applyOverrides flattens nested override maps into dotted keys.
func applyOverrides(v *viper.Viper, prefix string, values map[string]any) {
	for key, value := range values {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			applyOverrides(v, full, nested)
			continue
		}
		v.Set(full, value)
	}
}

// GetConfig returns the most recently loaded configuration, or nil
// before the first Load.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}
