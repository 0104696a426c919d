package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	GRPCPort string `mapstructure:"GRPC_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Storage: "memory" or "mysql".
	StorageDriver     string `mapstructure:"STORAGE_DRIVER"`
	MySQLDSN          string `mapstructure:"MYSQL_DSN"`
	MySQLMaxOpenConns int    `mapstructure:"MYSQL_MAX_OPEN_CONNS"`
	MySQLMaxIdleConns int    `mapstructure:"MYSQL_MAX_IDLE_CONNS"`

	// Item lock: "memory", "redis" or "mysql".
	LockDriver    string        `mapstructure:"LOCK_DRIVER"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	LockTTL       time.Duration `mapstructure:"LOCK_TTL"`

	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case "memory":
	case "mysql":
		if c.MySQLDSN == "" {
			return errors.New("MYSQL_DSN is required for mysql storage")
		}
		if _, err := mysql.ParseDSN(c.MySQLDSN); err != nil {
			return fmt.Errorf("invalid MYSQL_DSN: %w", err)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.LockDriver {
	case "memory", "redis":
	case "mysql":
		if c.StorageDriver != "mysql" {
			return errors.New("LOCK_DRIVER mysql requires STORAGE_DRIVER mysql")
		}
	default:
		return fmt.Errorf("unknown LOCK_DRIVER %q", c.LockDriver)
	}

	if c.LockTTL <= 0 {
		return errors.New("LOCK_TTL must be positive")
	}
	if c.MaxRequestsPerMin <= 0 {
		return errors.New("MAX_REQUESTS_PER_MIN must be positive")
	}
	return nil
}

// Load reads configuration from the file at path, or from config.yaml in the
// working directory when path is empty. Environment variables override both.
func Load(path string) (Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", "memory")
	v.SetDefault("MYSQL_DSN", "")
	v.SetDefault("MYSQL_MAX_OPEN_CONNS", 50)
	v.SetDefault("MYSQL_MAX_IDLE_CONNS", 25)
	v.SetDefault("LOCK_DRIVER", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCK_TTL", "10s")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 600)
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.StorageDriver == "mysql" {
		dsn, err := NormalizeMySQLDSN(cfg.MySQLDSN)
		if err != nil {
			return Config{}, err
		}
		cfg.MySQLDSN = dsn
	}
	return cfg, nil
}

// NormalizeMySQLDSN forces the driver options the storage layer relies on:
// DATETIME columns scan into time.Time and are read as UTC.
func NormalizeMySQLDSN(dsn string) (string, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MYSQL_DSN: %w", err)
	}
	parsed.ParseTime = true
	parsed.Loc = time.UTC
	return parsed.FormatDSN(), nil
}
