package player

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/lock"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
)

// Service is the player registry: one display name per identity
type Service struct {
	storage   storage.Storage
	locks     *lock.KeyedLock
	publisher notify.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a new player Service
func New(storage storage.Storage, locks *lock.KeyedLock, publisher notify.Publisher, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		locks:     locks,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "player")),
	}
}

// Register binds a display name to an identity. Names are immutable once set.
func (s *Service) Register(ctx context.Context, identity model.Identity, name string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrInvalidName
	}

	var player *model.Player
	err := s.locks.WithLock(ctx, lock.PlayerKey(identity), func() error {
		_, err := s.storage.GetPlayer(ctx, identity)
		if err == nil {
			return model.ErrAlreadyRegistered
		}
		if !errors.Is(err, model.ErrPlayerNotFound) {
			return err
		}

		player = &model.Player{
			Identity:    identity,
			DisplayName: name,
			CreatedAt:   s.clock.Now(),
		}
		return s.storage.SavePlayer(ctx, player)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player registered",
		slog.String("identity", string(identity)),
		slog.String("display_name", name))

	s.publisher.Publish(ctx, model.Event{
		Type:      model.EventPlayerRegistered,
		Timestamp: player.CreatedAt,
		Identity:  identity,
		Payload:   model.PlayerRegisteredPayload{DisplayName: name},
	})

	return player, nil
}

// IsRegistered reports whether the identity has a display name
func (s *Service) IsRegistered(ctx context.Context, identity model.Identity) (bool, error) {
	_, err := s.storage.GetPlayer(ctx, identity)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, model.ErrPlayerNotFound) {
		return false, nil
	}
	return false, err
}

// GetPlayer returns the registered player for an identity
func (s *Service) GetPlayer(ctx context.Context, identity model.Identity) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, identity)
}

// AwardPoint adds one won round to the player's lifetime score
func (s *Service) AwardPoint(ctx context.Context, identity model.Identity) error {
	return s.locks.WithLock(ctx, lock.PlayerKey(identity), func() error {
		player, err := s.storage.GetPlayer(ctx, identity)
		if err != nil {
			return err
		}
		player.Score++
		return s.storage.SavePlayer(ctx, player)
	})
}
