package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ConnectionManager manages WebSocket connections grouped by game.
type ConnectionManager struct {
	gameConnections map[string]map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	provider SnapshotProvider

	refreshCh chan refresh
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID       string
	PlayerID string
	GameID   string
	Conn     *websocket.Conn
	Send     chan []byte
	Manager  *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	LoadTimeout     time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// refresh asks the manager to push the latest snapshot of a game. A nil
// target means every connection of the game.
type refresh struct {
	gameID    string
	eventID   string
	eventType string
	target    *Connection
}

// ConnectionStats summarizes open connections.
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveGames      int            `json:"active_games"`
	GameConnections  map[string]int `json:"game_connections"`
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		LoadTimeout:     5 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

func NewConnectionManager(config ConnectionConfig, provider SnapshotProvider) *ConnectionManager {
	return &ConnectionManager{
		gameConnections: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:    config,
		provider:  provider,
		refreshCh: make(chan refresh, 1000),
	}
}

// Start processes refresh requests until ctx is done. Snapshots are loaded
// here, one at a time, so a connection never receives an older snapshot
// after a newer one.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case r := <-cm.refreshCh:
			cm.handleRefresh(ctx, r)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and queues
// the game's current snapshot for it.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, playerID, gameID string) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		PlayerID:    playerID,
		GameID:      gameID,
		Conn:        conn,
		Send:        make(chan []byte, 16),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	cm.enqueue(refresh{gameID: gameID, target: connection})

	log.Info().
		Str("connection_id", connection.ID).
		Str("player_id", playerID).
		Str("game_id", gameID).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.gameConnections[conn.GameID] == nil {
		cm.gameConnections[conn.GameID] = make(map[*Connection]bool)
	}
	cm.gameConnections[conn.GameID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("game_id", conn.GameID).
		Int("total_connections", len(cm.gameConnections[conn.GameID])).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.gameConnections[conn.GameID]
	if !exists {
		return
	}
	if _, exists := connections[conn]; !exists {
		return
	}
	delete(connections, conn)
	close(conn.Send)

	if len(connections) == 0 {
		delete(cm.gameConnections, conn.GameID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("player_id", conn.PlayerID).
		Str("game_id", conn.GameID).
		Msg("connection unregistered")
}

// RefreshGame pushes the latest snapshot of gameID to all its connections.
func (cm *ConnectionManager) RefreshGame(gameID, eventID, eventType string) {
	cm.enqueue(refresh{gameID: gameID, eventID: eventID, eventType: eventType})
}

func (cm *ConnectionManager) enqueue(r refresh) {
	select {
	case cm.refreshCh <- r:
	default:
		log.Warn().Str("game_id", r.gameID).Msg("refresh channel full, dropping message")
	}
}

func (cm *ConnectionManager) targets(r refresh) []*Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	connections := cm.gameConnections[r.gameID]
	if r.target != nil {
		if connections[r.target] {
			return []*Connection{r.target}
		}
		return nil
	}
	out := make([]*Connection, 0, len(connections))
	for conn := range connections {
		out = append(out, conn)
	}
	return out
}

func (cm *ConnectionManager) handleRefresh(ctx context.Context, r refresh) {
	targets := cm.targets(r)
	if len(targets) == 0 {
		return
	}

	msg := Message{
		Type:      MessageTypeSnapshot,
		GameID:    r.gameID,
		EventID:   r.eventID,
		EventType: r.eventType,
		Timestamp: time.Now().UTC(),
	}

	loadCtx, cancel := context.WithTimeout(ctx, cm.config.LoadTimeout)
	snap, err := cm.provider.GetGameState(loadCtx, r.gameID)
	cancel()
	switch {
	case errors.Is(err, models.ErrGameNotFound):
		msg.Type = MessageTypeError
		msg.Error = models.ErrGameNotFound.Error()
	case err != nil:
		log.Error().Err(err).Str("game_id", r.gameID).Msg("failed to load game snapshot")
		return
	default:
		msg.Snapshot = &snap
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal message for broadcast")
		return
	}

	for _, conn := range targets {
		cm.send(conn, data)
	}

	log.Debug().
		Str("event_type", r.eventType).
		Str("game_id", r.gameID).
		Int("connections", len(targets)).
		Msg("snapshot broadcasted")
}

// send never blocks the manager loop; a client that cannot keep up is
// dropped and expected to reconnect.
func (cm *ConnectionManager) send(conn *Connection, data []byte) {
	cm.mu.RLock()
	live := cm.gameConnections[conn.GameID][conn]
	if live {
		select {
		case conn.Send <- data:
			cm.mu.RUnlock()
			return
		default:
		}
	}
	cm.mu.RUnlock()
	if !live {
		return
	}

	log.Warn().
		Str("connection_id", conn.ID).
		Str("player_id", conn.PlayerID).
		Msg("connection send buffer full, closing connection")
	cm.unregisterConnection(conn)
	conn.Conn.Close()
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{GameConnections: make(map[string]int)}
	for gameID, connections := range cm.gameConnections {
		stats.TotalConnections += len(connections)
		stats.GameConnections[gameID] = len(connections)
	}
	stats.ActiveGames = len(cm.gameConnections)
	return stats
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage serves "refresh" requests from clients that think
// they missed an update. Anything else is ignored.
func (c *Connection) handleClientMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Debug().Str("connection_id", c.ID).Msg("ignoring malformed client message")
		return
	}
	if msg.Type == "refresh" {
		c.Manager.enqueue(refresh{gameID: c.GameID, target: c})
	}
}
