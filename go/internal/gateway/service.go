package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service pushes game snapshots to WebSocket clients whenever the outbox
// relay reports a change.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     eventSource
}

// eventSource feeds game change events to the connection manager.
type eventSource interface {
	Start(ctx context.Context) error
	Stop() error
}

// Brokers the gateway can consume from.
const (
	BrokerJetStream = "jetstream"
	BrokerAMQP      = "amqp"
)

// Config holds configuration for the game gateway service
type Config struct {
	Broker           string
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
	AMQPConfig       AMQPConsumerConfig
}

func DefaultConfig() Config {
	return Config{
		Broker:           BrokerJetStream,
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
		AMQPConfig:       DefaultAMQPConsumerConfig(),
	}
}

func NewService(config Config, provider SnapshotProvider) (*Service, error) {
	connectionManager := NewConnectionManager(config.ConnectionConfig, provider)

	eventConsumer, err := newEventSource(config, connectionManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager, provider),
		eventConsumer:     eventConsumer,
	}, nil
}

func newEventSource(config Config, refresher Refresher) (eventSource, error) {
	switch config.Broker {
	case BrokerJetStream, "":
		return NewEventConsumer(refresher, config.JetStreamConfig)
	case BrokerAMQP:
		return NewAMQPConsumer(refresher, config.AMQPConfig)
	default:
		return nil, fmt.Errorf("unknown broker %q", config.Broker)
	}
}

// Start runs the gateway until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting game gateway service")

	go s.connectionManager.Start(ctx)

	go func() {
		if err := s.eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("game gateway service shutting down")
	return s.Stop()
}

func (s *Service) Stop() error {
	if err := s.eventConsumer.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop event consumer")
	}
	log.Info().Msg("game gateway service stopped")
	return nil
}

// RegisterRoutes registers the WebSocket and state routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("game gateway routes registered")
}
