package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	PublicURL       string        `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	Site            string        `env:"SITE_NAME" envDefault:"FactoryPulse"`
	FixturesPath    string        `env:"FIXTURES_PATH"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// PostgreSQL, optional
	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBURL      string `env:"DATABASE_URL"`
	DBCACert   string `env:"DB_CA_CERT"`
	DBSchema   string `env:"DB_SCHEMA" envDefault:"factory"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	// Kafka, optional
	KafkaBrokers []string `env:"KAFKA_BROKER" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"factorypulse"`
	KafkaCACert  string   `env:"KAFKA_CA_CERT"`
	KafkaCert    string   `env:"KAFKA_CLIENT_CERT"` // optional client cert
	KafkaKey     string   `env:"KAFKA_CLIENT_KEY"`  // optional client key

	// Upstream status feed, optional
	FeedURL   string `env:"FEED_URL"`
	FeedToken string `env:"FEED_TOKEN"`

	// Browser websocket auth; empty secret disables it
	JWTSecret   string `env:"WS_JWT_SECRET"`
	JWTAudience string `env:"WS_JWT_AUDIENCE" envDefault:"factorypulse"`

	RefreshSchedule string `env:"REFRESH_SCHEDULE" envDefault:"@every 30s"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore error, fallback to env vars

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Build DB URL if not provided
	if cfg.DBURL == "" && cfg.DBHost != "" {
		u := url.URL{
			Scheme:   "postgresql",
			User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
			Host:     net.JoinHostPort(cfg.DBHost, cfg.DBPort),
			Path:     "/" + cfg.DBName,
			RawQuery: "sslmode=verify-full",
		}
		cfg.DBURL = u.String()
	}
	return cfg, nil
}

func (c *Config) DatabaseEnabled() bool { return c.DBURL != "" }

func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 && c.KafkaTopic != "" }

func (c *Config) FeedEnabled() bool { return c.FeedURL != "" }

func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of %v", c.LogLevel, logLevels))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR is required"))
	}
	if c.DBHost != "" && c.DBName == "" {
		errs = append(errs, errors.New("DB_NAME is required when DB_HOST is set"))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKER is set"))
	}
	if (c.KafkaCert == "") != (c.KafkaKey == "") {
		errs = append(errs, errors.New("KAFKA_CLIENT_CERT and KAFKA_CLIENT_KEY must be set together"))
	}
	if c.FeedURL != "" {
		u, err := url.Parse(c.FeedURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			errs = append(errs, fmt.Errorf("FEED_URL %q must be a ws:// or wss:// URL", c.FeedURL))
		}
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}
