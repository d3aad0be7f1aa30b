package lobby

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/lock"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
)

// Registry answers whether an identity may take part in games
type Registry interface {
	IsRegistered(ctx context.Context, identity model.Identity) (bool, error)
}

// Controller is the game registry: it creates lobbies and fills their seats
type Controller struct {
	storage   storage.Storage
	players   Registry
	locks     *lock.KeyedLock
	publisher notify.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewController creates a new lobby Controller
func NewController(
	storage storage.Storage,
	players Registry,
	locks *lock.KeyedLock,
	publisher notify.Publisher,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		players:   players,
		locks:     locks,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "lobby")),
	}
}

func (c *Controller) requireRegistered(ctx context.Context, identity model.Identity) error {
	ok, err := c.players.IsRegistered(ctx, identity)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotRegistered
	}
	return nil
}

// CreateGame opens a pending game with the creator in seat 0
func (c *Controller) CreateGame(ctx context.Context, creator model.Identity, name string) (*model.Game, error) {
	if err := c.requireRegistered(ctx, creator); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrInvalidGameName
	}

	id, err := c.storage.NextGameID(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:        id,
		Name:      name,
		Creator:   creator,
		Status:    model.GameStatusPending,
		Seats:     []model.Identity{creator},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = c.locks.WithLock(ctx, lock.GameKey(id), func() error {
		return c.storage.SaveGame(ctx, game)
	})
	if err != nil {
		c.logger.Error("failed to save game",
			slog.Uint64("game_id", uint64(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.Uint64("game_id", uint64(id)),
		slog.String("name", name),
		slog.String("identity", string(creator)),
	)

	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventGameCreated,
		Timestamp: now,
		GameID:    id,
		Identity:  creator,
		Payload:   model.GameCreatedPayload{Name: name, Creator: creator},
	})

	return game, nil
}

// JoinGame takes the next free seat in a pending game
func (c *Controller) JoinGame(ctx context.Context, identity model.Identity, gameID model.GameID) (*model.Game, error) {
	var game *model.Game
	err := c.locks.WithLock(ctx, lock.GameKey(gameID), func() error {
		var err error
		game, err = c.storage.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if err := c.requireRegistered(ctx, identity); err != nil {
			return err
		}
		// A started game counts as full
		if game.IsFull() || game.Status != model.GameStatusPending {
			return model.ErrGameFull
		}
		if game.IsSeated(identity) {
			return model.ErrAlreadyInGame
		}

		game.Seats = append(game.Seats, identity)
		game.UpdatedAt = c.clock.Now()
		return c.storage.SaveGame(ctx, game)
	})
	if err != nil {
		return nil, err
	}

	seat := game.SeatOf(identity)
	c.logger.Info("player joined game",
		slog.Uint64("game_id", uint64(gameID)),
		slog.String("identity", string(identity)),
		slog.Int("seat", seat),
	)

	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventPlayerJoinedGame,
		Timestamp: game.UpdatedAt,
		GameID:    gameID,
		Identity:  identity,
		Payload:   model.PlayerJoinedGamePayload{Seat: seat, Seats: len(game.Seats)},
	})

	return game, nil
}

// ListPending returns games still waiting for players, oldest first
func (c *Controller) ListPending(ctx context.Context) ([]*model.Game, error) {
	return c.storage.ListGames(ctx, model.GameStatusPending)
}

// ListGames returns games in the given status, oldest first
func (c *Controller) ListGames(ctx context.Context, status model.GameStatus) ([]*model.Game, error) {
	return c.storage.ListGames(ctx, status)
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}
