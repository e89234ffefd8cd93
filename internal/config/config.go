package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Database   *DBConfig
	Service    *ServiceConfig
	Eloqua     *EloquaConfig
	NonceStore *NonceStoreConfig
}

type DBConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"decision-service"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASS"`
}

type ServiceConfig struct {
	Address     string `envconfig:"SVC_ADDRESS" default:":8080"`
	LogLevel    string `envconfig:"SVC_LOG_LEVEL" default:"info"`
	Name        string `envconfig:"SVC_NAME" default:"Decision Service"`
	Description string `envconfig:"SVC_DESCRIPTION" default:"Eloqua AppCloud decision service"`
}

// EloquaConfig carries the credentials and endpoints for the Eloqua
// instance this service is installed into.
type EloquaConfig struct {
	ConsumerKey               string        `envconfig:"ELOQUA_CONSUMER_KEY"`
	ConsumerSecret            string        `envconfig:"ELOQUA_CONSUMER_SECRET"`
	BaseURL                   string        `envconfig:"ELOQUA_BASE_URL" default:"https://secure.eloqua.com"`
	BulkAPIBase               string        `envconfig:"ELOQUA_BULK_API_BASE" default:"https://secure.eloqua.com/api/bulk/2.0"`
	VerifySignatures          bool          `envconfig:"ELOQUA_VERIFY_SIGNATURES" default:"true"`
	TimestampWindow           time.Duration `envconfig:"ELOQUA_TIMESTAMP_WINDOW" default:"5m"`
	MaxRecordsPerNotification int           `envconfig:"ELOQUA_MAX_RECORDS" default:"1000"`
}

type NonceStoreConfig struct {
	Type          string        `envconfig:"NONCE_STORE_TYPE" default:"memory"`
	RedisAddr     string        `envconfig:"NONCE_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"NONCE_REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"NONCE_REDIS_DB" default:"0"`
	KeyPrefix     string        `envconfig:"NONCE_KEY_PREFIX" default:"decision:nonce:"`
	TTL           time.Duration `envconfig:"NONCE_TTL" default:"10m"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if cfg.Database.Type != "pgsql" && cfg.Database.Type != "sqlite" {
		logrus.Warnf("invalid DB_TYPE %q, defaulting to sqlite", cfg.Database.Type)
		cfg.Database.Type = "sqlite"
	}
	if cfg.NonceStore.Type != "memory" && cfg.NonceStore.Type != "redis" {
		logrus.Warnf("invalid NONCE_STORE_TYPE %q, defaulting to memory", cfg.NonceStore.Type)
		cfg.NonceStore.Type = "memory"
	}
	return cfg, nil
}

// ParseLogLevel maps the configured log level onto a logrus level,
// falling back to info for unknown values.
func (c *ServiceConfig) ParseLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
