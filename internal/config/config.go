package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Ledger   LedgerConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
	RateLimit      int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

// LedgerConfig tunes the reconciliation engine.
type LedgerConfig struct {
	TxTimeout            time.Duration
	MaxRetryAttempts     int
	AllowNegativeAmounts bool
}

type AuthConfig struct {
	JWTSecret string
}

type RedisConfig struct {
	Enabled        bool
	Addr           string
	Password       string
	DB             int
	ReportCacheTTL time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// Load reads path (YAML, optional) and lets environment variables override
// every key: database.host is read from DATABASE_HOST, and so on.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			RateLimit:      v.GetInt("server.rate_limit"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Ledger: LedgerConfig{
			TxTimeout:            v.GetDuration("ledger.tx_timeout"),
			MaxRetryAttempts:     v.GetInt("ledger.max_retry_attempts"),
			AllowNegativeAmounts: v.GetBool("ledger.allow_negative_amounts"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
		},
		Redis: RedisConfig{
			Enabled:        v.GetBool("redis.enabled"),
			Addr:           v.GetString("redis.addr"),
			Password:       v.GetString("redis.password"),
			DB:             v.GetInt("redis.db"),
			ReportCacheTTL: v.GetDuration("redis.report_cache_ttl"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("kafka.enabled"),
			Brokers: v.GetStringSlice("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "stockledger")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.name", "stockledger")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("ledger.tx_timeout", "5s")
	v.SetDefault("ledger.max_retry_attempts", 3)
	v.SetDefault("ledger.allow_negative_amounts", true)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.report_cache_ttl", "1m")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "stock.changed")
}

func (c *Config) validate() error {
	if c.Ledger.MaxRetryAttempts < 1 {
		return fmt.Errorf("ledger.max_retry_attempts must be at least 1, got %d", c.Ledger.MaxRetryAttempts)
	}
	if c.Ledger.TxTimeout <= 0 {
		return fmt.Errorf("ledger.tx_timeout must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}
