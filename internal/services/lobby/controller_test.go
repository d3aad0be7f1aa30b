package lobby

import (
	"context"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cardsagainstentropy/internal/lock"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
	"github.com/mcoot/cardsagainstentropy/internal/services/player"
	"github.com/mcoot/cardsagainstentropy/internal/storage/memory"
	"github.com/mcoot/cardsagainstentropy/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	players    *player.Service
	recorder   *notify.Recorder
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.recorder = &notify.Recorder{}
	clock := quartz.NewMock(s.T())
	locks := lock.New()
	logger := testutil.NopLogger()
	s.players = player.New(s.storage, locks, notify.Nop{}, clock, logger)
	s.controller = NewController(s.storage, s.players, locks, s.recorder, clock, logger)
	s.ctx = context.Background()

	for _, id := range []model.Identity{"0xaaa", "0xbbb", "0xccc", "0xddd"} {
		_, err := s.players.Register(s.ctx, id, string(id))
		s.Require().NoError(err)
	}
}

func (s *ControllerSuite) createGame() *model.Game {
	game, err := s.controller.CreateGame(s.ctx, "0xaaa", "Friday night")
	s.Require().NoError(err)
	return game
}

// CreateGame tests

func (s *ControllerSuite) TestCreateGame() {
	game := s.createGame()

	s.Equal(model.GameID(1), game.ID)
	s.Equal("Friday night", game.Name)
	s.Equal(model.GameStatusPending, game.Status)
	s.Equal([]model.Identity{"0xaaa"}, game.Seats)

	s.Equal([]model.EventType{model.EventGameCreated}, s.recorder.Types())
}

func (s *ControllerSuite) TestCreateGameIDsIncrease() {
	first := s.createGame()
	second := s.createGame()
	s.Equal(first.ID+1, second.ID)
}

func (s *ControllerSuite) TestCreateGameNotRegistered() {
	_, err := s.controller.CreateGame(s.ctx, "0xnobody", "table")
	s.ErrorIs(err, model.ErrNotRegistered)
}

func (s *ControllerSuite) TestCreateGameRegistrationCheckedFirst() {
	_, err := s.controller.CreateGame(s.ctx, "0xnobody", "   ")
	s.ErrorIs(err, model.ErrNotRegistered)
}

func (s *ControllerSuite) TestCreateGameEmptyName() {
	_, err := s.controller.CreateGame(s.ctx, "0xaaa", " \t ")
	s.ErrorIs(err, model.ErrInvalidGameName)
}

// JoinGame tests

func (s *ControllerSuite) TestJoinGame() {
	game := s.createGame()

	joined, err := s.controller.JoinGame(s.ctx, "0xbbb", game.ID)
	s.Require().NoError(err)
	s.Equal([]model.Identity{"0xaaa", "0xbbb"}, joined.Seats)

	events := s.recorder.Events()
	s.Require().Len(events, 2)
	s.Equal(model.EventPlayerJoinedGame, events[1].Type)
	s.Equal(model.PlayerJoinedGamePayload{Seat: 1, Seats: 2}, events[1].Payload)
}

func (s *ControllerSuite) TestJoinGameNotFound() {
	_, err := s.controller.JoinGame(s.ctx, "0xnobody", 99)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestJoinGameNotRegistered() {
	game := s.createGame()
	_, err := s.controller.JoinGame(s.ctx, "0xnobody", game.ID)
	s.ErrorIs(err, model.ErrNotRegistered)
}

func (s *ControllerSuite) TestJoinGameAlreadySeated() {
	game := s.createGame()
	_, err := s.controller.JoinGame(s.ctx, "0xaaa", game.ID)
	s.ErrorIs(err, model.ErrAlreadyInGame)
}

func (s *ControllerSuite) TestJoinGameFull() {
	game := s.createGame()
	_, err := s.controller.JoinGame(s.ctx, "0xbbb", game.ID)
	s.Require().NoError(err)
	_, err = s.controller.JoinGame(s.ctx, "0xccc", game.ID)
	s.Require().NoError(err)

	_, err = s.controller.JoinGame(s.ctx, "0xddd", game.ID)
	s.ErrorIs(err, model.ErrGameFull)

	// Full is reported before already-seated
	_, err = s.controller.JoinGame(s.ctx, "0xbbb", game.ID)
	s.ErrorIs(err, model.ErrGameFull)
}

func (s *ControllerSuite) TestJoinGameNotPending() {
	game := s.createGame()
	game.Status = model.GameStatusActive
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	_, err := s.controller.JoinGame(s.ctx, "0xbbb", game.ID)
	s.ErrorIs(err, model.ErrGameFull)
}

// Listing tests

func (s *ControllerSuite) TestListPending() {
	first := s.createGame()
	second := s.createGame()

	second.Status = model.GameStatusActive
	s.Require().NoError(s.storage.SaveGame(s.ctx, second))
	third := s.createGame()

	pending, err := s.controller.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(first.ID, pending[0].ID)
	s.Equal(third.ID, pending[1].ID)

	active, err := s.controller.ListGames(s.ctx, model.GameStatusActive)
	s.Require().NoError(err)
	s.Len(active, 1)
}

func (s *ControllerSuite) TestGetGame() {
	game := s.createGame()

	got, err := s.controller.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.Name, got.Name)

	_, err = s.controller.GetGame(s.ctx, 42)
	s.ErrorIs(err, model.ErrGameNotFound)
}
