package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/cardsagainstentropy/internal/api/middleware"
	"github.com/mcoot/cardsagainstentropy/internal/api/request"
	"github.com/mcoot/cardsagainstentropy/internal/api/response"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/services/auth"
	"github.com/mcoot/cardsagainstentropy/internal/services/player"
)

// PlayerHandler handles identity, session and player endpoints
type PlayerHandler struct {
	authService   *auth.Service
	playerService *player.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, playerService *player.Service) *PlayerHandler {
	return &PlayerHandler{
		authService:   authService,
		playerService: playerService,
	}
}

// CreateIdentity handles POST /api/v1/identities
func (h *PlayerHandler) CreateIdentity(w http.ResponseWriter, r *http.Request) {
	var req request.CreateIdentityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.authService.CreateIdentity(r.Context(), req.Passphrase)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromAuth(session))
}

// Login handles POST /api/v1/sessions
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Identity == "" {
		WriteError(w, NewInvalidRequestError("identity is required"))
		return
	}
	if req.Passphrase == "" {
		WriteError(w, NewInvalidRequestError("passphrase is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), model.NormalizeIdentity(req.Identity), req.Passphrase)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromAuth(session))
}

// Logout handles DELETE /api/v1/sessions/current
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.authService.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}

// Register handles POST /api/v1/players
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.RegisterPlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.playerService.Register(r.Context(), identity, req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(p))
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	h.writePlayer(w, r, identity)
}

// Get handles GET /api/v1/players/{identity}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writePlayer(w, r, model.NormalizeIdentity(mux.Vars(r)["identity"]))
}

func (h *PlayerHandler) writePlayer(w http.ResponseWriter, r *http.Request, identity model.Identity) {
	p, err := h.playerService.GetPlayer(r.Context(), identity)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(p))
}
