package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/storage/storagetest"
)

type StoreSuite struct {
	storagetest.Suite
	path  string
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "cae.db")
	store, err := Open(s.path)
	s.Require().NoError(err)
	s.store = store
	s.Storage = store
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreSuite) TestOpenRequiresPath() {
	_, err := Open("  ")
	s.Error(err)
}

func (s *StoreSuite) TestDataSurvivesReopen() {
	ctx := s.T().Context()
	id, err := s.store.NextGameID(ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.store.SaveGame(ctx, &model.Game{ID: id, Name: "persisted", Status: model.GameStatusPending}))
	s.Require().NoError(s.store.Close())

	reopened, err := Open(s.path)
	s.Require().NoError(err)
	s.store = reopened

	game, err := reopened.GetGame(ctx, id)
	s.Require().NoError(err)
	s.Equal("persisted", game.Name)

	next, err := reopened.NextGameID(ctx)
	s.Require().NoError(err)
	s.Equal(id+1, next)
}
