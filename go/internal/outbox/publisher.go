package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// Message headers set on every published event.
const (
	HeaderEventType = "Event-Type"
	HeaderGameID    = "Game-ID"
	HeaderEventID   = "Event-ID"
)

type JetStreamConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration // How long to keep messages
	MaxMsgs         int64         // Max number of messages to keep
	Replicas        int           // Number of replicas for the stream
	DuplicateWindow time.Duration // Window for duplicate detection
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "GAME_EVENTS",
		SubjectPrefix:   "game.events",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          24 * time.Hour,
		MaxMsgs:         -1,
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
	}
}

// Envelope is the JSON body of every message on the game stream.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	GameID    string          `json:"gameId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope wraps an outbox row for publishing.
func NewEnvelope(event OutboxEvent, now time.Time) Envelope {
	return Envelope{
		EventID:   event.ID.String(),
		EventType: event.EventType,
		GameID:    event.GameID,
		Timestamp: now.UTC(),
		Payload:   event.Payload,
	}
}

// Subject returns the stream subject for an event type.
func Subject(prefix, eventType string) string {
	return fmt.Sprintf("%s.%s", prefix, eventType)
}

// ConnectNATS dials NATS with reconnect handling and logging hooks.
func ConnectNATS(url string, maxReconnects int, reconnectWait time.Duration) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

func NewJetStreamPublisher(cfg JetStreamConfig) (*JetStreamPublisher, error) {
	nc, err := ConnectNATS(cfg.URL, cfg.MaxReconnects, cfg.ReconnectWait)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &JetStreamPublisher{nc: nc, js: js, config: cfg}

	if err := p.ensureStream(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return p, nil
}

func (p *JetStreamPublisher) streamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        p.config.StreamName,
		Description: "Game event stream fed by the outbox relay",
		Subjects:    []string{fmt.Sprintf("%s.>", p.config.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      p.config.MaxAge,
		MaxMsgs:     p.config.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    p.config.Replicas,
		Duplicates:  p.config.DuplicateWindow,
	}
}

func (p *JetStreamPublisher) ensureStream(ctx context.Context) error {
	sc := p.streamConfig()

	stream, err := p.js.Stream(ctx, p.config.StreamName)
	if err != nil {
		if _, err = p.js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().
			Str("stream", p.config.StreamName).
			Msg("created JetStream stream")
		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = p.js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().
			Str("stream", p.config.StreamName).
			Msg("updated JetStream stream")
	}
	return nil
}

// newMsg builds the NATS message for an event.
func newMsg(prefix string, event OutboxEvent, now time.Time) (*nats.Msg, error) {
	data, err := json.Marshal(NewEnvelope(event, now))
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return &nats.Msg{
		Subject: Subject(prefix, event.EventType),
		Data:    data,
		Header: nats.Header{
			HeaderEventType: []string{event.EventType},
			HeaderGameID:    []string{event.GameID},
			HeaderEventID:   []string{event.ID.String()},
		},
	}, nil
}

func (p *JetStreamPublisher) Publish(ctx context.Context, event OutboxEvent) error {
	msg, err := newMsg(p.config.SubjectPrefix, event, time.Now())
	if err != nil {
		return err
	}

	// the outbox id doubles as the dedup id, so a retried publish is dropped
	ack, err := p.js.PublishMsg(ctx, msg,
		jetstream.WithMsgID(event.ID.String()),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Info().
		Str("subject", msg.Subject).
		Str("event_id", event.ID.String()).
		Uint64("sequence", ack.Sequence).
		Str("stream", ack.Stream).
		Bool("duplicate", ack.Duplicate).
		Msg("published to JetStream")

	return nil
}

func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.MaxMsgs == b.MaxMsgs &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}
