package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/sticks/go/internal/game"
	"github.com/mcdev12/sticks/go/internal/gateway"
	"github.com/mcdev12/sticks/go/internal/outbox"
	"github.com/mcdev12/sticks/go/internal/roomcode"
)

// EventPublisher is an outbox publisher holding a broker connection.
type EventPublisher interface {
	outbox.Publisher
	Close() error
}

type Services struct {
	Game      *game.Service
	Gateway   *gateway.Service
	Publisher EventPublisher
	Relay     *outbox.Listener
}

func setupServices(config *Config, dbs *Databases) (*Services, error) {
	// Database layer → Repository layer → App layer → Service layer
	gameRepo := game.NewRepository(dbs.Pool)

	appCfg := game.DefaultAppConfig()
	if config.Rooms.CodeAttempts > 0 {
		appCfg.MaxRoomCodeAttempts = config.Rooms.CodeAttempts
	}
	if config.Rooms.MaxClockSkew > 0 {
		appCfg.MaxClockSkew = config.Rooms.MaxClockSkew
	}
	gameApp := game.NewApp(gameRepo, clockwork.NewRealClock(), roomcode.NewGenerator(nil), appCfg)
	gameService := game.NewService(gameApp)

	// Outbox relay: committed rows → broker
	publisher, err := setupPublisher(config)
	if err != nil {
		return nil, err
	}

	relay, err := outbox.NewListener(dbs.Outbox, publisher, listenerConfig(config, dbs))
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create outbox listener: %w", err)
	}

	// Gateway: broker → websocket snapshots
	gatewayService, err := gateway.NewService(gatewayConfig(config), gameApp)
	if err != nil {
		relay.Stop()
		publisher.Close()
		return nil, fmt.Errorf("failed to create gateway service: %w", err)
	}

	return &Services{
		Game:      gameService,
		Gateway:   gatewayService,
		Publisher: publisher,
		Relay:     relay,
	}, nil
}

func setupPublisher(config *Config) (EventPublisher, error) {
	switch config.Broker {
	case gateway.BrokerJetStream, "":
		publisher, err := outbox.NewJetStreamPublisher(jetStreamConfig(config))
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}
		return publisher, nil
	case gateway.BrokerAMQP:
		publisher, err := outbox.NewAMQPPublisher(amqpConfig(config))
		if err != nil {
			return nil, fmt.Errorf("failed to create RabbitMQ publisher: %w", err)
		}
		return publisher, nil
	default:
		return nil, fmt.Errorf("unknown broker %q", config.Broker)
	}
}

func amqpConfig(config *Config) outbox.AMQPConfig {
	cfg := outbox.DefaultAMQPConfig()
	if config.AMQP.URL != "" {
		cfg.URL = config.AMQP.URL
	}
	if config.AMQP.Exchange != "" {
		cfg.Exchange = config.AMQP.Exchange
	}
	if config.NATS.SubjectPrefix != "" {
		cfg.RoutingPrefix = config.NATS.SubjectPrefix
	}
	return cfg
}

func jetStreamConfig(config *Config) outbox.JetStreamConfig {
	cfg := outbox.DefaultJetStreamConfig()
	if config.NATS.URL != "" {
		cfg.URL = config.NATS.URL
	}
	if config.NATS.Stream != "" {
		cfg.StreamName = config.NATS.Stream
	}
	if config.NATS.SubjectPrefix != "" {
		cfg.SubjectPrefix = config.NATS.SubjectPrefix
	}
	if config.NATS.MaxAge > 0 {
		cfg.MaxAge = config.NATS.MaxAge
	}
	return cfg
}

func listenerConfig(config *Config, dbs *Databases) outbox.ListenerConfig {
	cfg := outbox.DefaultListenerConfig()
	cfg.DatabaseURL = dbs.Config.DSN()
	if config.Outbox.NotifyChannel != "" {
		cfg.NotifyChannel = config.Outbox.NotifyChannel
	}
	if config.Outbox.FallbackInterval > 0 {
		cfg.FallbackInterval = config.Outbox.FallbackInterval
	}
	if config.Outbox.BatchSize > 0 {
		cfg.BatchSize = config.Outbox.BatchSize
	}
	return cfg
}

func gatewayConfig(config *Config) gateway.Config {
	cfg := gateway.DefaultConfig()
	if config.Broker != "" {
		cfg.Broker = config.Broker
	}
	if config.AMQP.URL != "" {
		cfg.AMQPConfig.URL = config.AMQP.URL
	}
	if config.AMQP.Exchange != "" {
		cfg.AMQPConfig.Exchange = config.AMQP.Exchange
	}
	if config.NATS.URL != "" {
		cfg.JetStreamConfig.URL = config.NATS.URL
	}
	if config.NATS.Stream != "" {
		cfg.JetStreamConfig.StreamName = config.NATS.Stream
	}
	if config.NATS.SubjectPrefix != "" {
		cfg.JetStreamConfig.SubjectFilter = config.NATS.SubjectPrefix + ".>"
		cfg.AMQPConfig.BindingKey = config.NATS.SubjectPrefix + ".#"
	}
	if config.Gateway.ConsumerName != "" {
		cfg.JetStreamConfig.ConsumerName = config.Gateway.ConsumerName
	}
	if config.Gateway.MaxMessageSize > 0 {
		cfg.ConnectionConfig.MaxMessageSize = config.Gateway.MaxMessageSize
	}
	if config.Gateway.PingInterval > 0 {
		cfg.ConnectionConfig.PingInterval = config.Gateway.PingInterval
	}
	return cfg
}
