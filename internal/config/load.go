package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// LEANCOFFEE_SERVER_PORT for server.port.
const EnvPrefix = "LEANCOFFEE"

// DefaultConfigPaths are searched for config.yaml when Load is called
// without explicit paths.
var DefaultConfigPaths = []string{".", "/etc/leancoffee"}

// Load configuration from defaults, an optional config.yaml found in one of
// configPaths (DefaultConfigPaths when none are given), and environment
// variables. Environment variables take precedence over values from config
// files. Returns a populated Config struct or an error if loading/validation
// fails.
func Load(configPaths ...string) (*Config, error) {
	if len(configPaths) == 0 {
		configPaths = DefaultConfigPaths
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key, which also makes AutomaticEnv see keys
// that no config file mentions.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("store.driver", DriverMemory)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "boards/")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("s3.max_retries", 5)
}

var validate = validator.New()

// Validate checks field constraints and the settings each store driver
// depends on.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch cfg.Store.Driver {
	case DriverPostgres:
		if cfg.Database.URL == "" {
			return errors.New("invalid configuration: database.url is required when store.driver is postgres")
		}
	case DriverS3:
		if cfg.S3.Bucket == "" {
			return errors.New("invalid configuration: s3.bucket is required when store.driver is s3")
		}
		if (cfg.S3.AccessKey == "") != (cfg.S3.SecretKey == "") {
			return errors.New("invalid configuration: s3.access_key and s3.secret_key must be set together")
		}
	}
	return nil
}
