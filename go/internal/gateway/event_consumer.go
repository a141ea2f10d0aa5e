package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/sticks/go/internal/outbox"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// JetStreamConsumerConfig holds configuration for the JetStream consumer
type JetStreamConsumerConfig struct {
	URL           string
	StreamName    string
	ConsumerName  string
	SubjectFilter string        // e.g., "game.events.>"
	MaxDeliver    int           // Max delivery attempts
	AckWait       time.Duration // How long to wait for ack
	MaxAckPending int           // Max messages pending ack
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultJetStreamConsumerConfig() JetStreamConsumerConfig {
	return JetStreamConsumerConfig{
		URL:           nats.DefaultURL,
		StreamName:    "GAME_EVENTS",
		ConsumerName:  "game-gateway",
		SubjectFilter: "game.events.>",
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxAckPending: 100,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Refresher is told which game changed.
type Refresher interface {
	RefreshGame(gameID, eventID, eventType string)
}

// EventConsumer turns stream events into snapshot pushes
type EventConsumer struct {
	refresher Refresher
	nc        *nats.Conn
	js        jetstream.JetStream
	consumer  jetstream.Consumer
	config    JetStreamConsumerConfig
}

func NewEventConsumer(refresher Refresher, config JetStreamConsumerConfig) (*EventConsumer, error) {
	nc, err := outbox.ConnectNATS(config.URL, config.MaxReconnects, config.ReconnectWait)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ec := &EventConsumer{
		refresher: refresher,
		nc:        nc,
		js:        js,
		config:    config,
	}

	if err := ec.ensureConsumer(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure consumer: %w", err)
	}

	return ec, nil
}

func (ec *EventConsumer) ensureConsumer(ctx context.Context) error {
	stream, err := ec.js.Stream(ctx, ec.config.StreamName)
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}

	// Only new events matter: clients load the current snapshot on connect.
	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          ec.config.ConsumerName,
		Durable:       ec.config.ConsumerName,
		Description:   "Game gateway WebSocket consumer",
		FilterSubject: ec.config.SubjectFilter,
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    ec.config.MaxDeliver,
		AckWait:       ec.config.AckWait,
		MaxAckPending: ec.config.MaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	log.Info().
		Str("consumer", ec.config.ConsumerName).
		Str("stream", ec.config.StreamName).
		Msg("JetStream consumer ready")

	ec.consumer = consumer
	return nil
}

// Start consumes events until ctx is done.
func (ec *EventConsumer) Start(ctx context.Context) error {
	log.Info().
		Str("consumer", ec.config.ConsumerName).
		Str("stream", ec.config.StreamName).
		Msg("starting JetStream event consumer")

	messageCh := make(chan jetstream.Msg, 100)

	consumeCtx, err := ec.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
			msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutting down")
			return nil
		case msg := <-messageCh:
			if err := ec.handleData(msg.Data()); err != nil {
				log.Error().
					Err(err).
					Str("subject", msg.Subject()).
					Msg("failed to process message")
				// malformed envelopes will never parse; do not redeliver them
				if termErr := msg.Term(); termErr != nil {
					log.Error().Err(termErr).Msg("failed to TERM message")
				}
				continue
			}
			if ackErr := msg.Ack(); ackErr != nil {
				log.Error().Err(ackErr).Msg("failed to ACK message")
			}
		}
	}
}

// handleData decodes an outbox envelope and schedules a refresh of its game.
func (ec *EventConsumer) handleData(data []byte) error {
	return refreshFromEnvelope(ec.refresher, data)
}

func refreshFromEnvelope(refresher Refresher, data []byte) error {
	var envelope outbox.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}
	if envelope.GameID == "" {
		return fmt.Errorf("event %s has no game id", envelope.EventID)
	}

	log.Debug().
		Str("event_id", envelope.EventID).
		Str("game_id", envelope.GameID).
		Str("event_type", envelope.EventType).
		Msg("processing game event")

	refresher.RefreshGame(envelope.GameID, envelope.EventID, envelope.EventType)
	return nil
}

func (ec *EventConsumer) Stop() error {
	log.Info().Msg("stopping event consumer")
	if ec.nc != nil {
		ec.nc.Close()
	}
	return nil
}
