package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/mcoot/cardsagainstentropy/internal/api/apierr"
	"github.com/mcoot/cardsagainstentropy/internal/api/middleware"
	"github.com/mcoot/cardsagainstentropy/internal/api/request"
	"github.com/mcoot/cardsagainstentropy/internal/api/response"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/services/deck"
	"github.com/mcoot/cardsagainstentropy/internal/services/game"
	"github.com/mcoot/cardsagainstentropy/internal/services/lobby"
	"github.com/mcoot/cardsagainstentropy/internal/services/randomness"
)

// MaintenanceTokenHeader carries the operator token for restarts
const MaintenanceTokenHeader = "X-Maintenance-Token"

// GameHandler handles lobby and game endpoints
type GameHandler struct {
	lobbyController  *lobby.Controller
	gameController   *game.Controller
	coordinator      *randomness.Coordinator
	decks            *deck.Service
	maintenanceToken string
	logger           *slog.Logger
}

// NewGameHandler creates a new game handler. An empty maintenance token
// disables the restart endpoint.
func NewGameHandler(
	lobbyController *lobby.Controller,
	gameController *game.Controller,
	coordinator *randomness.Coordinator,
	decks *deck.Service,
	maintenanceToken string,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		lobbyController:  lobbyController,
		gameController:   gameController,
		coordinator:      coordinator,
		decks:            decks,
		maintenanceToken: maintenanceToken,
		logger:           logger,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.CreateGameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := h.lobbyController.CreateGame(r.Context(), identity, req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameStateFromModel(g, h.decks))
}

// List handles GET /api/v1/games?status=pending
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.GameStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = model.GameStatusPending
	}
	switch status {
	case model.GameStatusPending, model.GameStatusActive, model.GameStatusEnded:
	default:
		WriteError(w, NewInvalidRequestError("status must be pending, active or ended"))
		return
	}

	games, err := h.lobbyController.ListGames(r.Context(), status)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameSummariesFromModel(games))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDVar(w, r)
	if !ok {
		return
	}

	g, err := h.gameController.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g, h.decks))
}

// Join handles POST /api/v1/games/{id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id, ok := gameIDVar(w, r)
	if !ok {
		return
	}

	g, err := h.lobbyController.JoinGame(r.Context(), identity, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g, h.decks))
}

// Start handles POST /api/v1/games/{id}/start. With a sequence number the
// caller's own revealed flip seeds the deal; otherwise the server draws one.
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id, ok := gameIDVar(w, r)
	if !ok {
		return
	}

	var req request.StartGameRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	source := func(ctx context.Context) (model.Bytes32, error) {
		seed, seq, err := h.coordinator.Draw(ctx, identity)
		if err != nil {
			h.logger.Warn("server-side draw failed",
				slog.Uint64("game_id", uint64(id)),
				slog.Uint64("sequence_number", uint64(seq)),
				slog.Any("error", err),
			)
		}
		return seed, err
	}
	if req.SequenceNumber != nil {
		seq := model.SequenceNumber(*req.SequenceNumber)
		source = func(ctx context.Context) (model.Bytes32, error) {
			return h.coordinator.ConsumeSeed(ctx, seq, identity)
		}
	}

	g, err := h.gameController.StartGameWith(r.Context(), id, identity, source)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g, h.decks))
}

// Play handles POST /api/v1/games/{id}/play
func (h *GameHandler) Play(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id, ok := gameIDVar(w, r)
	if !ok {
		return
	}

	var req request.PlayCardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CardIndex == nil {
		WriteError(w, NewInvalidRequestError("card_index is required"))
		return
	}

	g, err := h.gameController.PlayCard(r.Context(), id, identity, *req.CardIndex)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g, h.decks))
}

// Judge handles POST /api/v1/games/{id}/judge
func (h *GameHandler) Judge(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id, ok := gameIDVar(w, r)
	if !ok {
		return
	}

	var req request.JudgeCardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PlayerIndex == nil {
		WriteError(w, NewInvalidRequestError("player_index is required"))
		return
	}

	g, err := h.gameController.JudgeCard(r.Context(), id, identity, *req.PlayerIndex)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g, h.decks))
}

// Hand handles GET /api/v1/games/{id}/hand
func (h *GameHandler) Hand(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id, ok := gameIDVar(w, r)
	if !ok {
		return
	}

	cards, err := h.gameController.Hand(r.Context(), id, identity)
	if err != nil {
		WriteError(w, err)
		return
	}
	played, err := h.gameController.HasPlayed(r.Context(), id, identity)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HandFromCards(id, cards, played))
}

// Restart handles POST /api/v1/games/{id}/restart
func (h *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDVar(w, r)
	if !ok {
		return
	}

	token := r.Header.Get(MaintenanceTokenHeader)
	if h.maintenanceToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.maintenanceToken)) != 1 {
		WriteError(w, apierr.NewForbiddenError("maintenance token required"))
		return
	}

	operator := string(middleware.GetIdentity(r.Context()))
	if operator == "" {
		operator = "maintenance"
	}

	g, err := h.gameController.RestartGame(r.Context(), id, operator)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g, h.decks))
}
