package dbconfig

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres connection settings.
type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	SSLMode        string
	MaxConns       int32
	ConnectTimeout time.Duration
}

// NewConfigFromEnv reads DB_* environment variables (with defaults).
func NewConfigFromEnv() Config {
	return Config{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnvAsInt("DB_PORT", 5432),
		User:           getEnv("DB_USER", "postgres"),
		Password:       getEnv("DB_PASSWORD", "postgres"),
		Database:       getEnv("DB_NAME", "sticks"),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		MaxConns:       int32(getEnvAsInt("DB_MAX_CONNS", 10)),
		ConnectTimeout: time.Duration(getEnvAsInt("DB_CONNECT_TIMEOUT", 5)) * time.Second,
	}
}

// DSN returns the Postgres connection URL. It is understood by both pgx
// and lib/pq.
func (c Config) DSN() string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// PoolConfig returns the pgx pool settings for this database.
func (c Config) PoolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if c.MaxConns > 0 {
		cfg.MaxConns = c.MaxConns
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
