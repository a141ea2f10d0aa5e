package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcdev12/sticks/go/internal/outbox"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
nats:
  url: nats://nats:4222
  subject_prefix: golf.events
outbox:
  fallback_interval: 5s
gateway:
  consumer_name: golf-gateway
rooms:
  code_attempts: 8
  max_clock_skew: 30s
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NATS_URL", "")

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if config.Server.Port != "9090" {
		t.Errorf("Port = %q, want 9090", config.Server.Port)
	}
	if config.Rooms.CodeAttempts != 8 || config.Rooms.MaxClockSkew != 30*time.Second {
		t.Errorf("Rooms = %+v", config.Rooms)
	}

	js := jetStreamConfig(config)
	if js.URL != "nats://nats:4222" || js.SubjectPrefix != "golf.events" {
		t.Errorf("jetstream config = %+v", js)
	}
	if js.StreamName != outbox.DefaultJetStreamConfig().StreamName {
		t.Errorf("StreamName = %q, want default", js.StreamName)
	}

	gw := gatewayConfig(config)
	if gw.JetStreamConfig.SubjectFilter != "golf.events.>" {
		t.Errorf("SubjectFilter = %q", gw.JetStreamConfig.SubjectFilter)
	}
	if gw.JetStreamConfig.ConsumerName != "golf-gateway" {
		t.Errorf("ConsumerName = %q", gw.JetStreamConfig.ConsumerName)
	}

	lc := listenerConfig(config, &Databases{})
	if lc.FallbackInterval != 5*time.Second {
		t.Errorf("FallbackInterval = %v, want 5s", lc.FallbackInterval)
	}
	if lc.NotifyChannel != outbox.DefaultNotifyChannel {
		t.Errorf("NotifyChannel = %q", lc.NotifyChannel)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("NATS_URL", "nats://env:4222")

	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if config.Server.Port != "7070" {
		t.Errorf("Port = %q, want 7070", config.Server.Port)
	}
	if config.NATS.URL != "nats://env:4222" {
		t.Errorf("NATS URL = %q", config.NATS.URL)
	}
}

func TestBrokerSelection(t *testing.T) {
	var config Config
	config.Broker = "amqp"
	config.AMQP.Exchange = "golf"
	config.NATS.SubjectPrefix = "golf.events"

	gw := gatewayConfig(&config)
	if gw.Broker != "amqp" {
		t.Errorf("Broker = %q, want amqp", gw.Broker)
	}
	if gw.AMQPConfig.Exchange != "golf" || gw.AMQPConfig.BindingKey != "golf.events.#" {
		t.Errorf("amqp consumer config = %+v", gw.AMQPConfig)
	}

	pc := amqpConfig(&config)
	if pc.Exchange != "golf" || pc.RoutingPrefix != "golf.events" {
		t.Errorf("amqp publisher config = %+v", pc)
	}

	config.Broker = "kafka"
	if _, err := setupPublisher(&config); err == nil {
		t.Error("unknown broker should fail")
	}
}
