package outbox

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestNewPublishing(t *testing.T) {
	e := event(EventPlayerJoined)
	now := time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)

	msg, err := newPublishing(e, now)
	if err != nil {
		t.Fatalf("newPublishing: %v", err)
	}

	if msg.MessageId != e.ID.String() {
		t.Errorf("MessageId = %q, want %q", msg.MessageId, e.ID)
	}
	if msg.Type != EventPlayerJoined {
		t.Errorf("Type = %q", msg.Type)
	}
	if msg.DeliveryMode != amqp.Persistent {
		t.Errorf("DeliveryMode = %d, want persistent", msg.DeliveryMode)
	}
	if got := msg.Headers[HeaderGameID]; got != "game-1" {
		t.Errorf("game header = %v", got)
	}

	var env Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.EventID != e.ID.String() || env.GameID != "game-1" || env.EventType != EventPlayerJoined {
		t.Errorf("envelope = %+v", env)
	}
}
