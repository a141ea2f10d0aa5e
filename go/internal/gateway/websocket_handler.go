package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/sticks/go/internal/models"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for game connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	provider          SnapshotProvider
}

func NewWebSocketHandler(cm *ConnectionManager, provider SnapshotProvider) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		provider:          provider,
	}
}

// HandleGameConnection handles /ws/game?game_id=...&player_id=...
func (h *WebSocketHandler) HandleGameConnection(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		http.Error(w, "game_id is required", http.StatusBadRequest)
		return
	}

	// reject unknown games before upgrading
	if _, err := h.provider.GetGameState(r.Context(), gameID); err != nil {
		if errors.Is(err, models.ErrGameNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("game_id", gameID).Msg("failed to load game before upgrade")
		http.Error(w, "failed to load game", http.StatusInternalServerError)
		return
	}

	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = "spectator"
	}

	if err := h.connectionManager.UpgradeConnection(w, r, playerID, gameID); err != nil {
		// the upgrader has already written the HTTP error
		log.Error().
			Err(err).
			Str("game_id", gameID).
			Str("player_id", playerID).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.connectionManager.GetConnectionStats())
}

// HandleGetGameState handles GET /api/games/{id}/state
func (h *WebSocketHandler) HandleGetGameState(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		http.Error(w, "game id is required", http.StatusBadRequest)
		return
	}

	snap, err := h.provider.GetGameState(r.Context(), gameID)
	if errors.Is(err, models.ErrGameNotFound) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID).Msg("failed to get game state")
		http.Error(w, "failed to get game state", http.StatusInternalServerError)
		return
	}
	writeJSON(w, snap)
}

func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/game", h.HandleGameConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
	mux.HandleFunc("GET /api/games/{id}/state", h.HandleGetGameState)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
