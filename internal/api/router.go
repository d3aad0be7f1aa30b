package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/cardsagainstentropy/internal/api/handler"
	"github.com/mcoot/cardsagainstentropy/internal/api/middleware"
	"github.com/mcoot/cardsagainstentropy/internal/api/response"
	"github.com/mcoot/cardsagainstentropy/internal/api/stream"
	"github.com/mcoot/cardsagainstentropy/internal/entropy"
	httpmw "github.com/mcoot/cardsagainstentropy/internal/middleware"
	"github.com/mcoot/cardsagainstentropy/internal/services/auth"
	"github.com/mcoot/cardsagainstentropy/internal/services/deck"
	"github.com/mcoot/cardsagainstentropy/internal/services/game"
	"github.com/mcoot/cardsagainstentropy/internal/services/lobby"
	"github.com/mcoot/cardsagainstentropy/internal/services/player"
	"github.com/mcoot/cardsagainstentropy/internal/services/randomness"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	PlayerService   *player.Service
	LobbyController *lobby.Controller
	GameController  *game.Controller
	Coordinator     *randomness.Coordinator
	Decks           *deck.Service
	HubManager      *stream.HubManager
	// MaintenanceToken gates the restart endpoint; empty disables it
	MaintenanceToken string
	// EntropyHandler, when set, serves the local provider under /entropy
	EntropyHandler *entropy.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.PlayerService)
	gameHandler := handler.NewGameHandler(cfg.LobbyController, cfg.GameController, cfg.Coordinator, cfg.Decks, cfg.MaintenanceToken, cfg.Logger)
	flipHandler := handler.NewFlipHandler(cfg.Coordinator)
	deckHandler := handler.NewDeckHandler(cfg.Decks)
	streamHandler := handler.NewStreamHandler(cfg.HubManager, cfg.GameController, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	loggingMiddleware := httpmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	authed := func(h http.HandlerFunc) http.Handler { return authMiddleware(h) }
	optional := func(h http.HandlerFunc) http.Handler { return optionalAuthMiddleware(h) }

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Identities and sessions (no auth required to obtain one)
	api.HandleFunc("/identities", playerHandler.CreateIdentity).Methods(http.MethodPost)
	api.HandleFunc("/sessions", playerHandler.Login).Methods(http.MethodPost)
	api.Handle("/sessions/current", authed(playerHandler.Logout)).Methods(http.MethodDelete)

	// Players; /me must be registered before the {identity} pattern
	api.Handle("/players", authed(playerHandler.Register)).Methods(http.MethodPost)
	api.Handle("/players/me", authed(playerHandler.GetMe)).Methods(http.MethodGet)
	api.HandleFunc("/players/{identity}", playerHandler.Get).Methods(http.MethodGet)

	// Games: reads are public, actions need a session
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.Handle("/games", authed(gameHandler.Create)).Methods(http.MethodPost)
	api.HandleFunc("/games/{id:[0-9]+}", gameHandler.Get).Methods(http.MethodGet)
	api.Handle("/games/{id:[0-9]+}/join", authed(gameHandler.Join)).Methods(http.MethodPost)
	api.Handle("/games/{id:[0-9]+}/start", authed(gameHandler.Start)).Methods(http.MethodPost)
	api.Handle("/games/{id:[0-9]+}/play", authed(gameHandler.Play)).Methods(http.MethodPost)
	api.Handle("/games/{id:[0-9]+}/judge", authed(gameHandler.Judge)).Methods(http.MethodPost)
	api.Handle("/games/{id:[0-9]+}/hand", authed(gameHandler.Hand)).Methods(http.MethodGet)
	api.Handle("/games/{id:[0-9]+}/restart", optional(gameHandler.Restart)).Methods(http.MethodPost)

	// Event streams
	api.Handle("/events", optional(streamHandler.AllEvents)).Methods(http.MethodGet)
	api.Handle("/games/{id:[0-9]+}/events", optional(streamHandler.GameEvents)).Methods(http.MethodGet)
	api.Handle("/games/{id:[0-9]+}/ws", optional(streamHandler.GameWS)).Methods(http.MethodGet)

	// Commit-reveal randomness
	api.HandleFunc("/flips/fee", flipHandler.Fee).Methods(http.MethodGet)
	api.Handle("/flips", authed(flipHandler.Request)).Methods(http.MethodPost)
	api.HandleFunc("/flips/{seq:[0-9]+}", flipHandler.Get).Methods(http.MethodGet)
	api.Handle("/flips/{seq:[0-9]+}/reveal", authed(flipHandler.Reveal)).Methods(http.MethodPost)

	// Decks
	api.HandleFunc("/decks/{kind}", deckHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/decks/{kind}/{index:[0-9]+}", deckHandler.Entry).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Local entropy provider, mounted outside the API prefix like a separate service
	if cfg.EntropyHandler != nil {
		provider := r.PathPrefix("/entropy").Subrouter()
		provider.Use(loggingMiddleware)
		cfg.EntropyHandler.Register(provider)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
