package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	Cache      CacheConfig
	EventStore EventStoreConfig
	Command    CommandConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT claim-verification settings. The core only verifies
// and reads tenant claims; token issuance belongs to the identity provider.
type JWTConfig struct {
	Secret string
	Issuer string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// CacheConfig holds read-model cache TTLs. Trial balance is an expensive
// aggregation and gets a much longer TTL than single-entity lookups.
type CacheConfig struct {
	EntityTTL       time.Duration
	TrialBalanceTTL time.Duration
}

// EventStoreConfig selects the event log backing store
type EventStoreConfig struct {
	Driver string // postgres, sqlite, memory
	// SQLitePath is the database file used by the sqlite driver
	SQLitePath string
}

// CommandConfig holds write-path settings
type CommandConfig struct {
	// ConflictRetries is the bounded retry budget applied only to
	// optimistic-concurrency conflicts
	ConflictRetries int
}

// Load reads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Cache: CacheConfig{
			EntityTTL:       v.GetDuration("cache.entity_ttl"),
			TrialBalanceTTL: v.GetDuration("cache.trial_balance_ttl"),
		},
		EventStore: EventStoreConfig{
			Driver:     v.GetString("eventstore.driver"),
			SQLitePath: v.GetString("eventstore.sqlite_path"),
		},
		Command: CommandConfig{
			ConflictRetries: v.GetInt("command.conflict_retries"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ledger-backend")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ledger")
	v.SetDefault("database.dbname", "ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.conn_max_idle_time", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.issuer", "ledger-backend")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("cache.entity_ttl", 30*time.Second)
	v.SetDefault("cache.trial_balance_ttl", 30*time.Minute)

	v.SetDefault("eventstore.driver", "postgres")
	v.SetDefault("eventstore.sqlite_path", "ledger.db")

	v.SetDefault("command.conflict_retries", 3)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.EventStore.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid eventstore driver %q", c.EventStore.Driver)
	}
	if c.Command.ConflictRetries < 1 || c.Command.ConflictRetries > 10 {
		return fmt.Errorf("command.conflict_retries must be between 1 and 10, got %d", c.Command.ConflictRetries)
	}
	if c.Cache.EntityTTL <= 0 {
		return fmt.Errorf("cache.entity_ttl must be positive")
	}
	if c.Cache.TrialBalanceTTL <= 0 {
		return fmt.Errorf("cache.trial_balance_ttl must be positive")
	}
	if c.App.Env == "production" && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	return nil
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
