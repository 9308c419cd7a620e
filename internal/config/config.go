// Package config loads service settings: built-in defaults, then an optional
// YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	StoreAPIURL    string        `yaml:"store_api_url"`
	CDNURL         string        `yaml:"cdn_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	StrictContacts bool          `yaml:"strict_contacts"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	WarmupDelay    time.Duration `yaml:"warmup_delay"`

	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	MySQL    MySQLConfig    `yaml:"mysql"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RedisConfig struct {
	Host       string        `yaml:"host"`
	Port       string        `yaml:"port"`
	DB         int           `yaml:"db"`
	CatalogTTL time.Duration `yaml:"catalog_ttl"`
}

func (c RedisConfig) Enabled() bool { return c.Host != "" }

func (c RedisConfig) Addr() string { return c.Host + ":" + c.Port }

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

func (c RabbitMQConfig) Enabled() bool { return c.URL != "" }

type MySQLConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
}

func (c MySQLConfig) Enabled() bool { return c.Host != "" }

func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

func Default() Config {
	return Config{
		Port:           "8080",
		StoreAPIURL:    "http://localhost:3000/api/weblarek",
		CDNURL:         "http://localhost:3000/content/weblarek",
		RequestTimeout: 5 * time.Second,
		StrictContacts: true,
		SessionTTL:     30 * time.Minute,
		WarmupDelay:    5 * time.Second,
		Log:            LogConfig{Level: "info", Format: "json"},
		Redis:          RedisConfig{Port: "6379", CatalogTTL: time.Minute},
		RabbitMQ:       RabbitMQConfig{Exchange: "order.exchange"},
		MySQL:          MySQLConfig{Port: "3306"},
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.StoreAPIURL == "" {
		return fmt.Errorf("config: store API URL is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request timeout must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session TTL must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.StoreAPIURL, "STORE_API_URL")
	setString(&cfg.CDNURL, "CDN_URL")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Port, "REDIS_PORT")

	setString(&cfg.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&cfg.RabbitMQ.Exchange, "RABBITMQ_EXCHANGE")

	setString(&cfg.MySQL.User, "MYSQL_USER")
	setString(&cfg.MySQL.Password, "MYSQL_PASSWORD")
	setString(&cfg.MySQL.Host, "MYSQL_HOST")
	setString(&cfg.MySQL.Port, "MYSQL_PORT")
	setString(&cfg.MySQL.Database, "MYSQL_DATABASE")

	for _, d := range []struct {
		dst *time.Duration
		key string
	}{
		{&cfg.RequestTimeout, "REQUEST_TIMEOUT"},
		{&cfg.SessionTTL, "SESSION_TTL"},
		{&cfg.WarmupDelay, "WARMUP_DELAY"},
		{&cfg.Redis.CatalogTTL, "REDIS_CATALOG_TTL"},
	} {
		if err := setDuration(d.dst, d.key); err != nil {
			return err
		}
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	if v := os.Getenv("STRICT_CONTACTS"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: STRICT_CONTACTS: %w", err)
		}
		cfg.StrictContacts = strict
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = d
	return nil
}
