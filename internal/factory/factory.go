package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/cardsagainstentropy/internal/api/stream"
	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/dependencies/random"
	"github.com/mcoot/cardsagainstentropy/internal/entropy"
	"github.com/mcoot/cardsagainstentropy/internal/lock"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
	"github.com/mcoot/cardsagainstentropy/internal/services/auth"
	"github.com/mcoot/cardsagainstentropy/internal/services/deck"
	"github.com/mcoot/cardsagainstentropy/internal/services/game"
	"github.com/mcoot/cardsagainstentropy/internal/services/lobby"
	"github.com/mcoot/cardsagainstentropy/internal/services/player"
	"github.com/mcoot/cardsagainstentropy/internal/services/randomness"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
	"github.com/mcoot/cardsagainstentropy/internal/storage/memory"
	redisstorage "github.com/mcoot/cardsagainstentropy/internal/storage/redis"
	"github.com/mcoot/cardsagainstentropy/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// Entropy mode constants
const (
	EntropyModeLocal  = "local"
	EntropyModeRemote = "remote"

	// DefaultEntropyChain is the chain id used when none is configured
	DefaultEntropyChain = "local"
)

// EntropyConfig selects and configures the randomness provider
type EntropyConfig struct {
	// Mode is "local" (in-process provider) or "remote" (HTTP provider).
	// If empty, defaults to "local".
	Mode string
	// URL is the remote provider base URL (required if Mode is "remote")
	URL string
	// Chain is the provider chain id used in request paths
	Chain string
	// RevealDelay applies to the local provider only
	RevealDelay time.Duration
	// Timeout bounds each HTTP call to a remote provider
	Timeout time.Duration
}

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Randomness
	Provider      entropy.Provider
	LocalProvider *entropy.Local // nil unless the entropy mode is local
	EntropyChain  string
	Fetcher       *randomness.Fetcher
	Coordinator   *randomness.Coordinator

	// Services
	Locks           *lock.KeyedLock
	Decks           *deck.Service
	PlayerService   *player.Service
	LobbyController *lobby.Controller
	GameController  *game.Controller
	AuthService     *auth.Service
	HubManager      *stream.HubManager
	Publisher       notify.Publisher

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// DeckPath is a JSON deck file (optional)
	// If empty, the built-in decks are used
	DeckPath string
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Randomness holds the flip fee (optional)
	// If zero value, defaults to randomness.DefaultConfig()
	Randomness randomness.Config
	// Fetch holds the reveal retry policy (optional)
	// If zero value, defaults to randomness.DefaultFetchConfig()
	Fetch randomness.FetchConfig
	// Entropy selects the randomness provider
	Entropy EntropyConfig
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
}

// dependencies are the pieces New resolves from Config before wiring
type dependencies struct {
	store  storage.Storage
	clock  clock.Clock
	random random.Random
	decks  *deck.Service
	logger *slog.Logger
	// observer, if set, sees every event alongside the stream hubs
	observer notify.Publisher
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	decks := deck.Default()
	if cfg.DeckPath != "" {
		loaded, err := deck.LoadFromFile(cfg.DeckPath)
		if err != nil {
			return nil, fmt.Errorf("load decks: %w", err)
		}
		decks = loaded
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	deps := dependencies{
		store:  store,
		clock:  clock.New(),
		random: random.New(),
		decks:  decks,
		logger: logger,
	}

	app, err := newWithDependencies(deps, cfg)
	if err != nil {
		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	return app, nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies, cfg Config) (*App, error) {
	logger := deps.logger

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	randomnessCfg := cfg.Randomness
	if randomnessCfg == (randomness.Config{}) {
		randomnessCfg = randomness.DefaultConfig()
	}
	fetchCfg := cfg.Fetch
	if fetchCfg == (randomness.FetchConfig{}) {
		fetchCfg = randomness.DefaultFetchConfig()
	}

	app := &App{
		Storage: deps.store,
		Clock:   deps.clock,
		Random:  deps.random,
		Decks:   deps.decks,
		Locks:   lock.New(),
		logger:  logger,
	}

	if cfg.Entropy.Chain == "" {
		cfg.Entropy.Chain = DefaultEntropyChain
	}

	switch mode := cfg.Entropy.Mode; mode {
	case "", EntropyModeLocal:
		app.LocalProvider = entropy.NewLocal(deps.clock, deps.random, entropy.LocalConfig{RevealDelay: cfg.Entropy.RevealDelay}, logger)
		app.Provider = app.LocalProvider
	case EntropyModeRemote:
		if cfg.Entropy.URL == "" {
			return nil, errors.New("Entropy.URL required when entropy mode is remote")
		}
		var httpClient *http.Client
		if cfg.Entropy.Timeout > 0 {
			httpClient = &http.Client{Timeout: cfg.Entropy.Timeout}
		}
		app.Provider = entropy.NewClient(cfg.Entropy.URL, cfg.Entropy.Chain, httpClient)
	default:
		return nil, fmt.Errorf("invalid entropy mode %q: must be 'local' or 'remote'", mode)
	}
	app.EntropyChain = cfg.Entropy.Chain

	// Events fan out to the stream hubs
	app.HubManager = stream.NewHubManager(logger)
	app.Publisher = stream.NewBroadcaster(app.HubManager, logger)
	if deps.observer != nil {
		app.Publisher = notify.Multi{app.Publisher, deps.observer}
	}

	app.wireServices(authCfg, randomnessCfg, fetchCfg)
	return app, nil
}

// wireServices builds the services on top of the resolved dependencies
func (a *App) wireServices(authCfg auth.Config, randomnessCfg randomness.Config, fetchCfg randomness.FetchConfig) {
	logger := a.logger
	a.Fetcher = randomness.NewFetcher(a.Provider, a.Clock, fetchCfg, logger)
	a.Coordinator = randomness.NewCoordinator(a.Storage, a.Provider, a.Fetcher, a.Locks, a.Publisher, a.Clock, a.Random, randomnessCfg, logger)
	a.PlayerService = player.New(a.Storage, a.Locks, a.Publisher, a.Clock, logger)
	a.LobbyController = lobby.NewController(a.Storage, a.PlayerService, a.Locks, a.Publisher, a.Clock, logger)
	a.GameController = game.NewController(a.Storage, a.Decks, a.PlayerService, a.Locks, a.Publisher, a.Clock, logger)
	a.AuthService = auth.New(a.Storage, a.Clock, a.Random, authCfg, logger)
}

// EntropyHandler returns the HTTP handler for the local provider, or nil when
// the provider is remote
func (a *App) EntropyHandler() *entropy.Handler {
	if a.LocalProvider == nil {
		return nil
	}
	return entropy.NewHandler(a.LocalProvider, a.EntropyChain, a.logger)
}

// Close stops the stream hubs and releases the storage backend
func (a *App) Close() error {
	a.HubManager.CloseAll()
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
