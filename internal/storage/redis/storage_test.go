package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.EndedGameTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestKeysUsePrefix() {
	s.Require().NoError(s.storage.SavePlayer(s.Ctx, &model.Player{Identity: "0xaaa", DisplayName: "Alice"}))
	s.True(s.mini.Exists("caegame:player:0xaaa"))
}

func (s *StorageSuite) TestEndedGameHasTTL() {
	game := &model.Game{ID: 1, Status: model.GameStatusActive}
	s.Require().NoError(s.storage.SaveGame(s.Ctx, game))
	s.Equal(time.Duration(0), s.mini.TTL(gameKey(1)))

	game.Status = model.GameStatusEnded
	s.Require().NoError(s.storage.SaveGame(s.Ctx, game))
	s.Equal(time.Hour, s.mini.TTL(gameKey(1)))
}

func (s *StorageSuite) TestExpiredGameDroppedFromListing() {
	game := &model.Game{ID: 1, Status: model.GameStatusEnded}
	s.Require().NoError(s.storage.SaveGame(s.Ctx, game))

	s.mini.FastForward(2 * time.Hour)

	games, err := s.storage.ListGames(s.Ctx, model.GameStatusEnded)
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *StorageSuite) TestStatusIndexMembership() {
	s.Require().NoError(s.storage.SaveGame(s.Ctx, &model.Game{ID: 5, Status: model.GameStatusPending}))

	members, err := s.mini.ZMembers(gamesByStatusIndexKey(model.GameStatusPending))
	s.Require().NoError(err)
	s.Equal([]string{"5"}, members)
}

func (s *StorageSuite) TestNewFailsOnBadURL() {
	_, err := New(Config{URL: "not-a-url"})
	s.Error(err)
}
