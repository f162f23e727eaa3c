package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Retention RetentionConfig `mapstructure:"retention"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Type  string           `mapstructure:"type"` // redis, mysql or memory
	Redis RedisStoreConfig `mapstructure:"redis"`
	MySQL MySQLStoreConfig `mapstructure:"mysql"`
}

// RedisStoreConfig holds Redis backend configuration. Address accepts either
// a redis:// URL or a plain host:port.
type RedisStoreConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MySQLStoreConfig holds MySQL backend configuration
type MySQLStoreConfig struct {
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// GetDSN builds the MySQL data source name.
func (c *MySQLStoreConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Hostname, c.Port, c.Database)
}

// AuthConfig holds bearer-token authentication configuration
type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// AuditConfig holds audit trail configuration
type AuditConfig struct {
	Publisher AuditPublisherConfig `mapstructure:"publisher"`
}

// AuditPublisherConfig configures the optional Kafka audit event stream.
type AuditPublisherConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// RetentionConfig holds retention enforcement configuration
type RetentionConfig struct {
	EnforceInterval time.Duration `mapstructure:"enforce_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default configuration lookup order:
		// 1. ./repository/conf/deployment.yaml (production - relative to binary)
		// 2. ./cmd/server/repository/conf/deployment.yaml (development)
		v.SetConfigName("deployment")
		v.SetConfigType("yaml")
		v.AddConfigPath("./repository/conf")
		v.AddConfigPath("./cmd/server/repository/conf")
		v.AddConfigPath("../repository/conf")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("COMPLIANCE")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.mysql.max_open_conns", 25)
	v.SetDefault("store.mysql.max_idle_conns", 5)
	v.SetDefault("store.mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("audit.publisher.topic", "audit.events")
	v.SetDefault("retention.enforce_interval", 24*time.Hour)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Store.Type {
	case "redis":
		if config.Store.Redis.Address == "" {
			return fmt.Errorf("redis address is required for the redis store backend")
		}
	case "mysql":
		if config.Store.MySQL.Hostname == "" {
			return fmt.Errorf("mysql hostname is required for the mysql store backend")
		}
		if config.Store.MySQL.Database == "" {
			return fmt.Errorf("mysql database name is required for the mysql store backend")
		}
	case "memory":
		// Nothing to validate; volatile backend for local development.
	default:
		return fmt.Errorf("unknown store type: %s", config.Store.Type)
	}

	if config.Auth.Enabled && config.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required when auth is enabled")
	}

	if config.Audit.Publisher.Enabled && len(config.Audit.Publisher.Brokers) == 0 {
		return fmt.Errorf("at least one broker is required when the audit publisher is enabled")
	}

	if config.Retention.EnforceInterval <= 0 {
		return fmt.Errorf("retention enforce interval must be positive, got %s", config.Retention.EnforceInterval)
	}

	return nil
}

// Get returns the loaded global configuration.
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded. Call config.Load first.")
	}
	return globalConfig
}
