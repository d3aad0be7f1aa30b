package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.Storage = New()
}

func (s *StorageSuite) TestSaveGameCopiesInput() {
	game := &model.Game{ID: 1, Status: model.GameStatusPending, Seats: []model.Identity{"0xaaa"}}
	s.Require().NoError(s.Storage.SaveGame(s.T().Context(), game))

	game.Seats[0] = "0xmutated"

	got, err := s.Storage.GetGame(s.T().Context(), 1)
	s.Require().NoError(err)
	s.Equal(model.Identity("0xaaa"), got.Seats[0])
}
