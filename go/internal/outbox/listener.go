package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to poll for missed events
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int // Max events to fetch per batch
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel:    DefaultNotifyChannel,
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// Listener relays committed outbox rows to a Publisher. Notifications
// drive the fast path; the fallback ticker picks up anything missed while
// the LISTEN connection was down.
type Listener struct {
	store     Store
	listener  *pq.Listener
	publisher Publisher
	cfg       ListenerConfig
}

func NewListener(dbConn *sql.DB, publisher Publisher, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for notifications")

	return &Listener{
		store:     NewRepository(dbConn),
		listener:  l,
		publisher: publisher,
		cfg:       cfg,
	}, nil
}

func (l *Listener) Start(ctx context.Context) error {
	log.Info().
		Str("channel", l.cfg.NotifyChannel).
		Dur("ping_interval", l.cfg.PingInterval).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("listener started")

	// drain anything left over from a previous run
	if err := l.processUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unsent events")
	}

	pingTicker := time.NewTicker(l.cfg.PingInterval)
	fallbackTicker := time.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("listener shutting down")
			return l.Stop()
		case note := <-l.listener.Notify:
			if note == nil {
				// connection was re-established; notifications may have been lost
				if err := l.processUnsent(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process unsent events")
				}
				continue
			}
			if err := l.handleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.C:
			if err := l.processUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

func (l *Listener) Stop() error {
	if l.listener == nil {
		return nil
	}
	return l.listener.Close()
}

// handleNotification publishes the event whose id is the notification payload.
func (l *Listener) handleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}

	event, err := l.store.FetchByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	if event.SentAt != nil {
		// the fallback sweep got there first
		return nil
	}

	if err := l.publishWithRetry(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Info().Str("event_id", id.String()).Msg("published and marked event as sent")
	return nil
}

func (l *Listener) processUnsent(ctx context.Context) error {
	unsent, err := l.store.FetchUnsent(ctx, l.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}

	for _, event := range unsent {
		if err := l.publishWithRetry(ctx, event); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to publish event")
			continue
		}
	}
	return nil
}

// publishWithRetry publishes with a linear backoff and marks the row sent
// once the bus has accepted it.
func (l *Listener) publishWithRetry(ctx context.Context, event OutboxEvent) error {
	var lastErr error

	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := l.cfg.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := l.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			log.Error().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		if err := l.store.MarkSent(ctx, event.ID); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to mark outbox event as sent")
			return err
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", l.cfg.MaxRetries+1, lastErr)
}
