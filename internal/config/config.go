// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// one exists), loads them into structured Go types and validates that
// required values are present.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional blocks (storage, server, observability).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env, if present,
	// before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the USERS_ prefix. The prefix is stripped, the
	rest is lowercased and a double underscore marks nesting:

		USERS_TABLE_NAME              -> table_name
		USERS_STORAGE__DRIVER         -> storage.driver
		USERS_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level
*/

// EnvPrefix is the prefix shared by every configuration variable.
const EnvPrefix = "USERS_"

// Storage drivers.
const (
	DriverDynamoDB = "dynamodb"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config is the root configuration object for the application.
type Config struct {
	// TableName names the backing table (DynamoDB table, Postgres table or
	// Redis key prefix). It is the one value without a default.
	TableName     string               `koanf:"table_name" validate:"required"`
	Primary       Primary              `koanf:"primary" validate:"required"`
	Storage       StorageConfig        `koanf:"storage" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	AWS           AWSConfig            `koanf:"aws"`
	Database      DatabaseConfig       `koanf:"database"`
	Redis         RedisConfig          `koanf:"redis"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// StorageConfig selects the repository implementation.
type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=dynamodb postgres redis memory"`

	// PageSize bounds the number of records fetched per scan page.
	PageSize int32 `koanf:"page_size" validate:"min=1"`
}

// ServerConfig groups settings for the local HTTP server. Timeouts are seconds.
type ServerConfig struct {
	Port         string `koanf:"port" validate:"required"`
	ReadTimeout  int    `koanf:"read_timeout" validate:"required"`
	WriteTimeout int    `koanf:"write_timeout" validate:"required"`
	IdleTimeout  int    `koanf:"idle_timeout" validate:"required"`
}

// AWSConfig configures the AWS SDK. Empty values fall back to the SDK's
// default chain (AWS_REGION, shared config, instance role).
type AWSConfig struct {
	Region string `koanf:"region"`

	// Endpoint overrides the DynamoDB endpoint, e.g. http://localhost:8000
	// for DynamoDB Local.
	Endpoint string `koanf:"endpoint"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"ssl_mode"`
	MaxConns int32  `koanf:"max_conns"`
}

// RedisConfig contains Redis connection details. Address is "host:port".
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// DefaultConfig returns the values used for everything the environment does not set.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "production"},
		Storage: StorageConfig{
			Driver:   DriverDynamoDB,
			PageSize: 100,
		},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			SSLMode:  "disable",
			MaxConns: 4,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// Load reads the configuration from the environment, applies defaults and validates it.
//
// A missing USERS_TABLE_NAME, or any other invalid value, is returned as an
// error: the caller must refuse to start.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Unmarshal only touches keys present in koanf, so defaults survive.
	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed; the environment label follows primary.env.
	mainConfig.Observability.ServiceName = "users"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate checks struct tags first, then the rules that depend on the selected driver.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("database.user and database.name are required for the %s driver", DriverPostgres)
		}
	case DriverRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required for the %s driver", DriverRedis)
		}
	}

	if c.Observability != nil {
		if err := c.Observability.Validate(); err != nil {
			return fmt.Errorf("invalid observability config: %w", err)
		}
	}

	return nil
}

// IsLocal reports whether the app runs in the local development environment.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
