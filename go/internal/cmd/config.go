package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Broker selects the event transport: "jetstream" (default) or "amqp".
	Broker string `yaml:"broker"`

	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`

	NATS struct {
		URL           string        `yaml:"url"`
		Stream        string        `yaml:"stream"`
		SubjectPrefix string        `yaml:"subject_prefix"`
		MaxAge        time.Duration `yaml:"max_age"`
	} `yaml:"nats"`

	Outbox struct {
		NotifyChannel    string        `yaml:"notify_channel"`
		FallbackInterval time.Duration `yaml:"fallback_interval"`
		BatchSize        int           `yaml:"batch_size"`
	} `yaml:"outbox"`

	Gateway struct {
		ConsumerName   string        `yaml:"consumer_name"`
		MaxMessageSize int64         `yaml:"max_message_size"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"gateway"`

	Rooms struct {
		CodeAttempts int           `yaml:"code_attempts"`
		MaxClockSkew time.Duration `yaml:"max_clock_skew"`
	} `yaml:"rooms"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads path when it exists. Zero values are filled in by the
// setup functions from each package's defaults.
func loadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		log.Warn().Str("path", path).Msg("config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if url := os.Getenv("NATS_URL"); url != "" {
		config.NATS.URL = url
	}
	if url := os.Getenv("AMQP_URL"); url != "" {
		config.AMQP.URL = url
	}
	if config.Server.Port == "" {
		config.Server.Port = getEnv("PORT", "8080")
	}

	return &config, nil
}
