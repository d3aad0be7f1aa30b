package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) getJSON(ctx context.Context, key string, notFound error, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.Identity), data, 0).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, identity model.Identity) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, playerKey(identity), model.ErrPlayerNotFound, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, credentialKey(cred.Identity), data, 0).Err()
}

func (s *Storage) GetCredential(ctx context.Context, identity model.Identity) (*model.Credential, error) {
	var cred model.Credential
	if err := s.getJSON(ctx, credentialKey(identity), model.ErrCredentialMissing, &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

// Game operations

func (s *Storage) NextGameID(ctx context.Context) (model.GameID, error) {
	id, err := s.client.Incr(ctx, gameCounterKey()).Result()
	if err != nil {
		return 0, err
	}
	return model.GameID(id), nil
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// Only finished games expire
	var ttl time.Duration
	if game.Status == model.GameStatusEnded {
		ttl = s.cfg.EndedGameTTL
	}

	member := strconv.FormatUint(uint64(game.ID), 10)

	// Save and move the game between status indexes atomically
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, ttl)
	for _, status := range allGameStatuses {
		if status != game.Status {
			pipe.ZRem(ctx, gamesByStatusIndexKey(status), member)
		}
	}
	pipe.ZAdd(ctx, gamesByStatusIndexKey(game.Status), redis.Z{Score: float64(game.ID), Member: member})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var game model.Game
	if err := s.getJSON(ctx, gameKey(id), model.ErrGameNotFound, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context, status model.GameStatus) ([]*model.Game, error) {
	members, err := s.client.ZRange(ctx, gamesByStatusIndexKey(status), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, gameKey(model.GameID(id)))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Game may have expired
		}
		raw, ok := val.(string)
		if !ok {
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(raw), &game); err != nil {
			continue // Skip invalid data
		}
		games = append(games, &game)
	}

	return games, nil
}

// Randomness operations

func (s *Storage) SaveRandomnessRequest(ctx context.Context, req *model.RandomnessRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, requestKey(req.SequenceNumber), data, 0).Err()
}

func (s *Storage) GetRandomnessRequest(ctx context.Context, seq model.SequenceNumber) (*model.RandomnessRequest, error) {
	var req model.RandomnessRequest
	if err := s.getJSON(ctx, requestKey(seq), model.ErrFlipNotFound, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
