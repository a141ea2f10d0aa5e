package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/sticks/go/internal/gamerpc"
	"github.com/mcdev12/sticks/go/internal/gateway"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ClientConfig points a Client at a game server.
type ClientConfig struct {
	BaseURL       string // e.g. http://localhost:8080
	HTTPClient    *http.Client
	Dialer        *websocket.Dialer
	ReconnectWait time.Duration
}

func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:       baseURL,
		HTTPClient:    http.DefaultClient,
		Dialer:        websocket.DefaultDialer,
		ReconnectWait: 2 * time.Second,
	}
}

// Client is the networked Bridge: RPCs go to the game service and
// snapshots arrive over the gateway WebSocket.
type Client struct {
	rpc   gamerpc.GameServiceClient
	cfg   ClientConfig
	clock clockwork.Clock
}

var _ Bridge = (*Client)(nil)

func NewClient(cfg ClientConfig, clock clockwork.Clock) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		rpc:   gamerpc.NewGameServiceClient(cfg.HTTPClient, cfg.BaseURL),
		cfg:   cfg,
		clock: clock,
	}
}

func (c *Client) CreateGame(ctx context.Context, host models.Player, courseName string, holes []models.Hole) (string, string, error) {
	resp, err := c.rpc.CreateGame(ctx, connect.NewRequest(&gamerpc.CreateGameRequest{
		Host:       host,
		CourseName: courseName,
		Holes:      holes,
	}))
	if err != nil {
		return "", "", gamerpc.FromConnectError(err)
	}
	return resp.Msg.GameID, resp.Msg.RoomCode, nil
}

func (c *Client) JoinGame(ctx context.Context, playerName, playerID, gameID string, playerNumber int) error {
	_, err := c.rpc.JoinGame(ctx, connect.NewRequest(&gamerpc.JoinGameRequest{
		PlayerName:   playerName,
		PlayerID:     playerID,
		GameID:       gameID,
		PlayerNumber: playerNumber,
	}))
	return gamerpc.FromConnectError(err)
}

// UpsertScore stamps the write with the local time of the edit, so the
// server orders concurrent edits by when they were made.
func (c *Client) UpsertScore(ctx context.Context, gameID, playerID string, holeNumber int, strokes *int) error {
	now := c.clock.Now().UTC()
	_, err := c.rpc.UpsertScore(ctx, connect.NewRequest(&gamerpc.UpsertScoreRequest{
		GameID:     gameID,
		PlayerID:   playerID,
		HoleNumber: holeNumber,
		Strokes:    strokes,
		UpdatedAt:  &now,
	}))
	return gamerpc.FromConnectError(err)
}

func (c *Client) SetPlayerFinished(ctx context.Context, gameID, playerID string) error {
	_, err := c.rpc.SetPlayerFinished(ctx, connect.NewRequest(&gamerpc.SetPlayerFinishedRequest{
		GameID:   gameID,
		PlayerID: playerID,
	}))
	return gamerpc.FromConnectError(err)
}

func (c *Client) SetGameStarted(ctx context.Context, gameID string) error {
	_, err := c.rpc.SetGameStarted(ctx, connect.NewRequest(&gamerpc.GameIDRequest{GameID: gameID}))
	return gamerpc.FromConnectError(err)
}

func (c *Client) SetGameComplete(ctx context.Context, gameID string) error {
	_, err := c.rpc.SetGameComplete(ctx, connect.NewRequest(&gamerpc.GameIDRequest{GameID: gameID}))
	return gamerpc.FromConnectError(err)
}

// GetGameState fetches a snapshot without subscribing.
func (c *Client) GetGameState(ctx context.Context, gameID string) (models.Snapshot, error) {
	resp, err := c.rpc.GetGameState(ctx, connect.NewRequest(&gamerpc.GameIDRequest{GameID: gameID}))
	if err != nil {
		return models.Snapshot{}, gamerpc.FromConnectError(err)
	}
	return resp.Msg.Snapshot, nil
}

func (c *Client) FindByRoomCode(ctx context.Context, code string) (models.RoomLookup, error) {
	resp, err := c.rpc.FindByRoomCode(ctx, connect.NewRequest(&gamerpc.FindByRoomCodeRequest{Code: code}))
	if err != nil {
		return models.RoomLookup{}, gamerpc.FromConnectError(err)
	}
	return resp.Msg.Lookup, nil
}

// Subscribe opens the gateway socket for gameID. Dropped connections are
// re-dialled; the gateway sends the full state on every connect, so
// nothing is lost across a reconnect.
func (c *Client) Subscribe(ctx context.Context, gameID string) (<-chan models.Snapshot, error) {
	conn, err := c.dial(ctx, gameID)
	if err != nil {
		return nil, err
	}

	out := make(chan models.Snapshot, 1)
	go c.pump(ctx, gameID, conn, out)
	return out, nil
}

func (c *Client) wsURL(gameID string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/game"
	u.RawQuery = url.Values{"game_id": {gameID}}.Encode()
	return u.String(), nil
}

func (c *Client) dial(ctx context.Context, gameID string) (*websocket.Conn, error) {
	target, err := c.wsURL(gameID)
	if err != nil {
		return nil, err
	}
	conn, resp, err := c.cfg.Dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, models.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to open game stream: %w", err)
	}
	return conn, nil
}

// pump is the only sender on out.
func (c *Client) pump(ctx context.Context, gameID string, conn *websocket.Conn, out chan models.Snapshot) {
	defer close(out)

	for {
		err := c.readSnapshots(ctx, conn, out)
		conn.Close()
		if ctx.Err() != nil || errors.Is(err, models.ErrGameNotFound) {
			return
		}
		log.Warn().Err(err).Str("game_id", gameID).Msg("game stream dropped, reconnecting")

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.clock.After(c.cfg.ReconnectWait):
			}
			conn, err = c.dial(ctx, gameID)
			if err == nil {
				break
			}
			if errors.Is(err, models.ErrGameNotFound) {
				return
			}
			log.Warn().Err(err).Str("game_id", gameID).Msg("reconnect failed")
		}
	}
}

func (c *Client) readSnapshots(ctx context.Context, conn *websocket.Conn, out chan models.Snapshot) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg gateway.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		switch msg.Type {
		case gateway.MessageTypeSnapshot:
			if msg.Snapshot != nil {
				offerLatest(out, *msg.Snapshot)
			}
		case gateway.MessageTypeError:
			if msg.Error == models.ErrGameNotFound.Error() {
				return models.ErrGameNotFound
			}
			log.Warn().Str("error", msg.Error).Msg("game stream error")
		}
	}
}

// offerLatest replaces any unread snapshot with s.
func offerLatest(ch chan models.Snapshot, s models.Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}
