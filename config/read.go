package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "FIELDCARE"
	defaultConfig = "config.yaml"
)

var GlobalConf *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.body_limit_mb", 16)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.rate_limit.requests_per_minute", 120)

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", "data/fieldcare.db")
	v.SetDefault("storage.lock_timeout_seconds", 2)
	v.SetDefault("storage.encryption_key", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "fieldcare")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.key_prefix", "fieldcare")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "fieldcare")

	// Keys without a default are invisible to AutomaticEnv on Unmarshal.
	v.SetDefault("export.enabled", false)
	v.SetDefault("export.url", "")
	v.SetDefault("export.timeout_seconds", 15)
	v.SetDefault("export.queue_size", 64)
	v.SetDefault("assist.enabled", false)
	v.SetDefault("assist.url", "")
	v.SetDefault("assist.api_key", "")
	v.SetDefault("assist.timeout_seconds", 60)

	v.SetDefault("observability.service_name", "fieldcare")
	v.SetDefault("observability.metrics.path", "/metrics")
	v.SetDefault("observability.tracing.sampling_rate", 1.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output.stdout", true)
}

// ReadConfig loads the YAML file at configPath. A missing file is not an
// error: defaults and FIELDCARE_* environment variables apply.
//
// e.g. FIELDCARE_STORAGE_BACKEND overrides storage.backend
func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		configPath = defaultConfig
	}
	v.SetConfigFile(configPath)
	if filepath.Ext(configPath) == "" {
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}
