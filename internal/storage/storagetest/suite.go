// Package storagetest holds the behavioural suite every storage backend must pass.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
)

// Suite exercises a storage.Storage. Backends embed it and set Storage in SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) ctx() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

func newGame(id model.GameID, status model.GameStatus) *model.Game {
	return &model.Game{
		ID:        id,
		Name:      "table",
		Creator:   "0xaaa",
		Status:    status,
		Seats:     []model.Identity{"0xaaa"},
		Hands:     map[model.Identity][]model.CardRef{"0xaaa": {{Kind: model.DeckAnswer, Index: 3}}},
		Used:      map[model.Identity][]int{},
		Scores:    map[model.Identity]int{"0xaaa": 0},
		CreatedAt: time.Unix(1700000000, 0).UTC(),
		UpdatedAt: time.Unix(1700000000, 0).UTC(),
	}
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{
		Identity:    "0xaaa",
		DisplayName: "Alice",
		Score:       2,
		CreatedAt:   time.Unix(1700000000, 0).UTC(),
	}
	s.Require().NoError(s.Storage.SavePlayer(s.ctx(), player))

	got, err := s.Storage.GetPlayer(s.ctx(), "0xaaa")
	s.Require().NoError(err)
	s.Equal("Alice", got.DisplayName)
	s.Equal(2, got.Score)
	s.True(player.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.ctx(), "0xnobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerOverwrites() {
	s.Require().NoError(s.Storage.SavePlayer(s.ctx(), &model.Player{Identity: "0xaaa", DisplayName: "Alice"}))
	s.Require().NoError(s.Storage.SavePlayer(s.ctx(), &model.Player{Identity: "0xaaa", DisplayName: "Alice", Score: 5}))

	got, err := s.Storage.GetPlayer(s.ctx(), "0xaaa")
	s.Require().NoError(err)
	s.Equal(5, got.Score)
}

// Credential tests

func (s *Suite) TestSaveAndGetCredential() {
	cred := &model.Credential{Identity: "0xaaa", PassphraseHash: "hash"}
	s.Require().NoError(s.Storage.SaveCredential(s.ctx(), cred))

	got, err := s.Storage.GetCredential(s.ctx(), "0xaaa")
	s.Require().NoError(err)
	s.Equal("hash", got.PassphraseHash)

	_, err = s.Storage.GetCredential(s.ctx(), "0xbbb")
	s.ErrorIs(err, model.ErrCredentialMissing)
}

// Game tests

func (s *Suite) TestNextGameIDIsMonotonic() {
	first, err := s.Storage.NextGameID(s.ctx())
	s.Require().NoError(err)
	second, err := s.Storage.NextGameID(s.ctx())
	s.Require().NoError(err)

	s.Equal(model.GameID(1), first)
	s.Equal(model.GameID(2), second)
}

func (s *Suite) TestSaveAndGetGame() {
	game := newGame(1, model.GameStatusPending)
	s.Require().NoError(s.Storage.SaveGame(s.ctx(), game))

	got, err := s.Storage.GetGame(s.ctx(), 1)
	s.Require().NoError(err)
	s.Equal(game.Name, got.Name)
	s.Equal(game.Seats, got.Seats)
	s.Equal(game.Hands, got.Hands)
	s.Equal(model.GameStatusPending, got.Status)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.ctx(), 42)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestGetGameDoesNotAliasStoredState() {
	s.Require().NoError(s.Storage.SaveGame(s.ctx(), newGame(1, model.GameStatusPending)))

	got, err := s.Storage.GetGame(s.ctx(), 1)
	s.Require().NoError(err)
	got.Seats = append(got.Seats, "0xbbb")
	got.Hands["0xaaa"][0].Index = 99

	again, err := s.Storage.GetGame(s.ctx(), 1)
	s.Require().NoError(err)
	s.Len(again.Seats, 1)
	s.Equal(uint64(3), again.Hands["0xaaa"][0].Index)
}

func (s *Suite) TestListGamesByStatus() {
	s.Require().NoError(s.Storage.SaveGame(s.ctx(), newGame(3, model.GameStatusPending)))
	s.Require().NoError(s.Storage.SaveGame(s.ctx(), newGame(1, model.GameStatusPending)))
	s.Require().NoError(s.Storage.SaveGame(s.ctx(), newGame(2, model.GameStatusActive)))

	pending, err := s.Storage.ListGames(s.ctx(), model.GameStatusPending)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(model.GameID(1), pending[0].ID)
	s.Equal(model.GameID(3), pending[1].ID)

	ended, err := s.Storage.ListGames(s.ctx(), model.GameStatusEnded)
	s.Require().NoError(err)
	s.Empty(ended)
}

func (s *Suite) TestListGamesFollowsStatusChange() {
	game := newGame(1, model.GameStatusPending)
	s.Require().NoError(s.Storage.SaveGame(s.ctx(), game))

	game.Status = model.GameStatusActive
	s.Require().NoError(s.Storage.SaveGame(s.ctx(), game))

	pending, err := s.Storage.ListGames(s.ctx(), model.GameStatusPending)
	s.Require().NoError(err)
	s.Empty(pending)

	active, err := s.Storage.ListGames(s.ctx(), model.GameStatusActive)
	s.Require().NoError(err)
	s.Len(active, 1)
}

// Randomness tests

func (s *Suite) TestSaveAndGetRandomnessRequest() {
	req := &model.RandomnessRequest{
		SequenceNumber: 7,
		Requester:      "0xaaa",
		Commitment:     model.Bytes32{1},
		Fee:            100,
		Status:         model.FlipPending,
	}
	s.Require().NoError(s.Storage.SaveRandomnessRequest(s.ctx(), req))

	got, err := s.Storage.GetRandomnessRequest(s.ctx(), 7)
	s.Require().NoError(err)
	s.Equal(req.Commitment, got.Commitment)
	s.Equal(model.FlipPending, got.Status)
	s.True(got.Seed.IsZero())

	req.Status = model.FlipFulfilled
	req.Seed = model.Bytes32{9}
	s.Require().NoError(s.Storage.SaveRandomnessRequest(s.ctx(), req))

	got, err = s.Storage.GetRandomnessRequest(s.ctx(), 7)
	s.Require().NoError(err)
	s.Equal(model.FlipFulfilled, got.Status)
	s.Equal(model.Bytes32{9}, got.Seed)
}

func (s *Suite) TestGetRandomnessRequestNotFound() {
	_, err := s.Storage.GetRandomnessRequest(s.ctx(), 1)
	s.ErrorIs(err, model.ErrFlipNotFound)
}
