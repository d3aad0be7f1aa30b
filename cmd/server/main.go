package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/cardsagainstentropy/internal/api"
	"github.com/mcoot/cardsagainstentropy/internal/factory"
	"github.com/mcoot/cardsagainstentropy/internal/services/auth"
	"github.com/mcoot/cardsagainstentropy/internal/services/randomness"
	redisstorage "github.com/mcoot/cardsagainstentropy/internal/storage/redis"
)

// serverEnv is the process configuration, read from the environment and an
// optional .env file
type serverEnv struct {
	Port     int        `env:"PORT" envDefault:"8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	SQLitePath  string `env:"SQLITE_PATH"`
	DeckPath    string `env:"DECK_PATH"`

	EntropyMode        string        `env:"ENTROPY_MODE" envDefault:"local"`
	EntropyURL         string        `env:"ENTROPY_URL"`
	EntropyChain       string        `env:"ENTROPY_CHAIN" envDefault:"local"`
	EntropyRevealDelay time.Duration `env:"ENTROPY_REVEAL_DELAY"`
	EntropyTimeout     time.Duration `env:"ENTROPY_TIMEOUT" envDefault:"10s"`
	FlipFee            uint64        `env:"FLIP_FEE" envDefault:"1"`

	MaintenanceToken string        `env:"MAINTENANCE_TOKEN"`
	SessionDuration  time.Duration `env:"SESSION_DURATION" envDefault:"24h"`
	CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL" envDefault:"5m"`
}

func main() {
	// A missing .env file is normal outside development
	_ = godotenv.Load()

	var cfg serverEnv
	if err := env.Parse(&cfg); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg serverEnv, logger *slog.Logger) error {
	authCfg := auth.DefaultConfig()
	authCfg.SessionDuration = cfg.SessionDuration

	factoryCfg := factory.Config{
		DeckPath:   cfg.DeckPath,
		AuthConfig: authCfg,
		Randomness: randomness.Config{FlipFee: cfg.FlipFee},
		Entropy: factory.EntropyConfig{
			Mode:        cfg.EntropyMode,
			URL:         cfg.EntropyURL,
			Chain:       cfg.EntropyChain,
			RevealDelay: cfg.EntropyRevealDelay,
			Timeout:     cfg.EntropyTimeout,
		},
		Logger:      logger,
		StorageType: cfg.StorageType,
		SQLitePath:  cfg.SQLitePath,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close application", slog.String("error", err.Error()))
		}
	}()

	if cfg.MaintenanceToken == "" {
		logger.Warn("MAINTENANCE_TOKEN not set, game restarts are disabled")
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		PlayerService:    app.PlayerService,
		LobbyController:  app.LobbyController,
		GameController:   app.GameController,
		Coordinator:      app.Coordinator,
		Decks:            app.Decks,
		HubManager:       app.HubManager,
		MaintenanceToken: cfg.MaintenanceToken,
		EntropyHandler:   app.EntropyHandler(),
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(ctx)
	})

	g.Go(func() error {
		cleanup(ctx, app, cfg.CleanupInterval, logger)
		return nil
	})

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.String("entropy", cfg.EntropyMode))

	return g.Wait()
}

// cleanup periodically drops expired sessions and idle stream hubs
func cleanup(ctx context.Context, app *factory.App, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := app.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions := app.AuthService.CleanExpiredSessions()
			hubs := app.HubManager.CleanupEmptyHubs()
			if sessions > 0 {
				logger.Debug("periodic cleanup",
					slog.Int("expired_sessions", sessions),
					slog.Int("empty_hubs", hubs))
			}
		}
	}
}
