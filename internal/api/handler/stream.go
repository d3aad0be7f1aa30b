package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mcoot/cardsagainstentropy/internal/api/middleware"
	"github.com/mcoot/cardsagainstentropy/internal/api/stream"
	"github.com/mcoot/cardsagainstentropy/internal/services/game"
)

// StreamHandler serves the event streams
type StreamHandler struct {
	hubs           *stream.HubManager
	gameController *game.Controller
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hubs *stream.HubManager, gameController *game.Controller, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		hubs:           hubs,
		gameController: gameController,
		upgrader:       stream.NewUpgrader(),
		logger:         logger,
	}
}

// AllEvents handles GET /api/v1/events
func (h *StreamHandler) AllEvents(w http.ResponseWriter, r *http.Request) {
	hub := h.hubs.GetOrCreateHub(stream.AllTopic)
	stream.ServeSSE(w, r, hub, middleware.GetIdentity(r.Context()))
}

// GameEvents handles GET /api/v1/games/{id}/events
func (h *StreamHandler) GameEvents(w http.ResponseWriter, r *http.Request) {
	hub, ok := h.gameHub(w, r)
	if !ok {
		return
	}
	stream.ServeSSE(w, r, hub, middleware.GetIdentity(r.Context()))
}

// GameWS handles GET /api/v1/games/{id}/ws
func (h *StreamHandler) GameWS(w http.ResponseWriter, r *http.Request) {
	hub, ok := h.gameHub(w, r)
	if !ok {
		return
	}
	stream.ServeWS(&h.upgrader, w, r, hub, middleware.GetIdentity(r.Context()), h.logger)
}

// gameHub resolves the hub for an existing game, so unknown ids 404 rather than
// leaving an empty hub behind
func (h *StreamHandler) gameHub(w http.ResponseWriter, r *http.Request) (*stream.Hub, bool) {
	id, ok := gameIDVar(w, r)
	if !ok {
		return nil, false
	}
	if _, err := h.gameController.GetGame(r.Context(), id); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return h.hubs.GetOrCreateHub(stream.GameTopic(id)), true
}
