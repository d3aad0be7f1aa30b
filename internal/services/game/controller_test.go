package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cardsagainstentropy/internal/lock"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
	"github.com/mcoot/cardsagainstentropy/internal/services/deck"
	"github.com/mcoot/cardsagainstentropy/internal/services/lobby"
	"github.com/mcoot/cardsagainstentropy/internal/services/player"
	"github.com/mcoot/cardsagainstentropy/internal/storage/memory"
	"github.com/mcoot/cardsagainstentropy/internal/testutil"
)

const (
	p1 model.Identity = "0xaaa"
	p2 model.Identity = "0xbbb"
	p3 model.Identity = "0xccc"
	p4 model.Identity = "0xddd"
)

var testSeed = model.Bytes32{0x7b}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	players    *player.Service
	lobby      *lobby.Controller
	deck       *deck.Service
	recorder   *notify.Recorder
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.recorder = &notify.Recorder{}
	s.deck = deck.Default()
	clock := quartz.NewMock(s.T())
	locks := lock.New()
	logger := testutil.TestLogger(s.T())

	s.players = player.New(s.storage, locks, notify.Nop{}, clock, logger)
	s.lobby = lobby.NewController(s.storage, s.players, locks, notify.Nop{}, clock, logger)
	s.controller = NewController(s.storage, s.deck, s.players, locks, s.recorder, clock, logger)

	for _, id := range []model.Identity{p1, p2, p3, p4} {
		_, err := s.players.Register(s.ctx, id, string(id))
		s.Require().NoError(err)
	}
}

// fullGame creates a pending game with p1, p2 and p3 seated in that order
func (s *ControllerSuite) fullGame() model.GameID {
	game, err := s.lobby.CreateGame(s.ctx, p1, "game1")
	s.Require().NoError(err)
	_, err = s.lobby.JoinGame(s.ctx, p2, game.ID)
	s.Require().NoError(err)
	_, err = s.lobby.JoinGame(s.ctx, p3, game.ID)
	s.Require().NoError(err)
	return game.ID
}

func (s *ControllerSuite) startedGame() model.GameID {
	id := s.fullGame()
	_, err := s.controller.StartGame(s.ctx, id, p1, testSeed)
	s.Require().NoError(err)
	s.recorder.Reset()
	return id
}

func (s *ControllerSuite) play(id model.GameID, who model.Identity, card int) {
	_, err := s.controller.PlayCard(s.ctx, id, who, card)
	s.Require().NoError(err)
}

func (s *ControllerSuite) judge(id model.GameID, who model.Identity, pick int) *model.Game {
	game, err := s.controller.JudgeCard(s.ctx, id, who, pick)
	s.Require().NoError(err)
	return game
}

// StartGame tests

func (s *ControllerSuite) TestStartGame() {
	id := s.fullGame()

	game, err := s.controller.StartGame(s.ctx, id, p2, testSeed)
	s.Require().NoError(err)

	s.Equal(model.GameStatusActive, game.Status)
	s.Equal(1, game.Round)
	s.Equal(p1, game.CurrentJudge())
	s.Equal(p2, game.ActivePlayer())
	s.Equal(model.PhasePlaying, game.Phase)
	s.Equal(testSeed, game.Seed)
	s.Equal(s.deck.QuestionFor(testSeed, 1), game.Question)

	hands := s.deck.DealTable(testSeed, 3, model.HandSize)
	for i, p := range game.Seats {
		s.Equal(hands[i], game.Hands[p])
		s.Equal(0, game.Scores[p])
	}

	events := s.recorder.Events()
	s.Require().Len(events, 1)
	s.Equal(model.EventGameStarted, events[0].Type)
	payload := events[0].Payload.(model.GameStartedPayload)
	s.Equal(p1, payload.Judge)
	s.Equal(s.deck.Resolve(game.Question), payload.Question)
}

func (s *ControllerSuite) TestStartGameIsDeterministicInSeed() {
	first := s.fullGame()
	second := s.fullGame()

	a, err := s.controller.StartGame(s.ctx, first, p1, testSeed)
	s.Require().NoError(err)
	b, err := s.controller.StartGame(s.ctx, second, p1, testSeed)
	s.Require().NoError(err)

	s.Equal(a.Hands, b.Hands)
	s.Equal(a.Question, b.Question)
}

func (s *ControllerSuite) TestStartGameValidationOrder() {
	_, err := s.controller.StartGame(s.ctx, 99, p1, testSeed)
	s.ErrorIs(err, model.ErrGameNotFound)

	game, err := s.lobby.CreateGame(s.ctx, p1, "small")
	s.Require().NoError(err)

	_, err = s.controller.StartGame(s.ctx, game.ID, p4, testSeed)
	s.ErrorIs(err, model.ErrNotPartOfGame)

	_, err = s.controller.StartGame(s.ctx, game.ID, p1, testSeed)
	s.ErrorIs(err, model.ErrGameNotFull)

	id := s.startedGame()
	_, err = s.controller.StartGame(s.ctx, id, p1, testSeed)
	s.ErrorIs(err, model.ErrInvalidGameStatus)
}

func (s *ControllerSuite) TestStartGameWithSkipsSourceWhenNotStartable() {
	calls := 0
	source := func(context.Context) (model.Bytes32, error) {
		calls++
		return testSeed, nil
	}

	_, err := s.controller.StartGameWith(s.ctx, 99, p1, source)
	s.ErrorIs(err, model.ErrGameNotFound)

	game, err := s.lobby.CreateGame(s.ctx, p1, "small")
	s.Require().NoError(err)
	_, err = s.controller.StartGameWith(s.ctx, game.ID, p1, source)
	s.ErrorIs(err, model.ErrGameNotFull)

	id := s.fullGame()
	_, err = s.controller.StartGameWith(s.ctx, id, p4, source)
	s.ErrorIs(err, model.ErrNotPartOfGame)
	s.Equal(0, calls)

	_, err = s.controller.StartGameWith(s.ctx, id, p3, source)
	s.Require().NoError(err)
	_, err = s.controller.StartGameWith(s.ctx, id, p3, source)
	s.ErrorIs(err, model.ErrInvalidGameStatus)
	s.Equal(1, calls)
}

func (s *ControllerSuite) TestConcurrentStartsSpendOneSeed() {
	id := s.fullGame()

	var calls atomic.Int32
	source := func(context.Context) (model.Bytes32, error) {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return testSeed, nil
	}

	errs := make([]error, 3)
	var wg sync.WaitGroup
	for i, p := range []model.Identity{p1, p2, p3} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.controller.StartGameWith(s.ctx, id, p, source)
		}()
	}
	wg.Wait()

	s.Equal(int32(1), calls.Load())
	started := 0
	for _, err := range errs {
		if err == nil {
			started++
			continue
		}
		s.ErrorIs(err, model.ErrInvalidGameStatus)
	}
	s.Equal(1, started)
	s.Len(s.recorder.Events(), 1)
}

func (s *ControllerSuite) TestStartGameWithSourceFailureKeepsGamePending() {
	id := s.fullGame()
	sentinel := errors.New("provider down")

	_, err := s.controller.StartGameWith(s.ctx, id, p1, func(context.Context) (model.Bytes32, error) {
		return model.Bytes32{}, sentinel
	})
	s.ErrorIs(err, sentinel)

	game, err := s.controller.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.GameStatusPending, game.Status)
	s.Empty(s.recorder.Events())
}

// PlayCard tests

func (s *ControllerSuite) TestPlayCardTurnOrder() {
	id := s.startedGame()

	_, err := s.controller.PlayCard(s.ctx, id, p1, 1)
	s.ErrorIs(err, model.ErrNotThisPlayersTurn)
	_, err = s.controller.PlayCard(s.ctx, id, p3, 1)
	s.ErrorIs(err, model.ErrNotThisPlayersTurn)

	s.play(id, p2, 1)

	_, err = s.controller.PlayCard(s.ctx, id, p1, 1)
	s.ErrorIs(err, model.ErrNotThisPlayersTurn)
	_, err = s.controller.PlayCard(s.ctx, id, p2, 1)
	s.ErrorIs(err, model.ErrNotThisPlayersTurn)

	game, err := s.controller.PlayCard(s.ctx, id, p3, 1)
	s.Require().NoError(err)
	s.Equal(model.PhaseJudging, game.Phase)
	s.Equal(model.Identity(""), game.ActivePlayer())
	s.Len(game.Played, 2)

	s.Equal([]model.EventType{model.EventCardPlayed, model.EventCardPlayed}, s.recorder.Types())
}

func (s *ControllerSuite) TestPlayCardRecordsCardText() {
	id := s.startedGame()

	game, err := s.controller.PlayCard(s.ctx, id, p2, 0)
	s.Require().NoError(err)

	card := game.Hands[p2][0]
	s.Equal(s.deck.Resolve(card), game.Played[0].Text)
	s.Equal([]int{0}, game.Used[p2])

	payload := s.recorder.Events()[0].Payload.(model.CardPlayedPayload)
	s.Equal(game.Played[0].Text, payload.CardText)
	s.Equal(1, payload.Round)
}

func (s *ControllerSuite) TestNoPlaysDuringJudging() {
	id := s.startedGame()
	s.play(id, p2, 1)
	s.play(id, p3, 1)

	for _, p := range []model.Identity{p1, p2, p3} {
		_, err := s.controller.PlayCard(s.ctx, id, p, 1)
		s.ErrorIs(err, model.ErrInvalidGameStatus)
	}
}

func (s *ControllerSuite) TestPlayCardIndexWraps() {
	id := s.startedGame()

	game, err := s.controller.PlayCard(s.ctx, id, p2, 5)
	s.Require().NoError(err)
	s.Equal(1, game.Played[0].Slot)
}

func (s *ControllerSuite) TestPlayCardNegativeIndex() {
	id := s.startedGame()

	_, err := s.controller.PlayCard(s.ctx, id, p2, -1)
	s.ErrorIs(err, model.ErrInvalidCardIndex)

	// Turn is checked first
	_, err = s.controller.PlayCard(s.ctx, id, p3, -1)
	s.ErrorIs(err, model.ErrNotThisPlayersTurn)
}

func (s *ControllerSuite) TestPlayCardNotActive() {
	id := s.fullGame()
	_, err := s.controller.PlayCard(s.ctx, id, p2, 0)
	s.ErrorIs(err, model.ErrInvalidGameStatus)

	_, err = s.controller.PlayCard(s.ctx, 99, p2, 0)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestCardCannotBeReplayed() {
	id := s.startedGame()
	s.play(id, p2, 1)
	s.play(id, p3, 1)
	s.judge(id, p1, 1)

	// Round 2: p2 judges, p3 then p1 play
	_, err := s.controller.PlayCard(s.ctx, id, p3, 1)
	s.ErrorIs(err, model.ErrCardAlreadyUsed)
	_, err = s.controller.PlayCard(s.ctx, id, p3, 3)
	s.ErrorIs(err, model.ErrCardAlreadyUsed)

	s.play(id, p3, 2)
}

// JudgeCard tests

func (s *ControllerSuite) TestJudgeCardValidationOrder() {
	id := s.startedGame()

	_, err := s.controller.JudgeCard(s.ctx, id, p1, 1)
	s.ErrorIs(err, model.ErrInvalidGameStatus)

	s.play(id, p2, 0)
	s.play(id, p3, 0)

	_, err = s.controller.JudgeCard(s.ctx, id, p2, 5)
	s.ErrorIs(err, model.ErrNotTheJudge)

	// Two cards were played, so only 0 and 1 are valid
	_, err = s.controller.JudgeCard(s.ctx, id, p1, 2)
	s.ErrorIs(err, model.ErrInvalidPlayerIndex)
	_, err = s.controller.JudgeCard(s.ctx, id, p1, -1)
	s.ErrorIs(err, model.ErrInvalidPlayerIndex)

	_, err = s.controller.JudgeCard(s.ctx, 99, p1, 1)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestJudgeCardPicksByPlayOrder() {
	id := s.startedGame()
	s.play(id, p2, 0)
	s.play(id, p3, 0)

	// Index 0 is the first card played this round, not the judge's seat
	game := s.judge(id, p1, 0)
	s.Equal(1, game.Scores[p2])
	s.Equal(0, game.Scores[p3])

	judged := s.recorder.Events()[2].Payload.(model.CardJudgedPayload)
	s.Equal(p2, judged.Winner)
	s.Equal(s.deck.Resolve(s.deck.DealTable(testSeed, 3, model.HandSize)[1][0]), judged.CardText)
}

func (s *ControllerSuite) TestJudgeCardRejectsJudgesOwnCard() {
	id := s.startedGame()
	s.play(id, p2, 0)
	s.play(id, p3, 0)

	game, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	game.Played = append(game.Played, model.PlayedCard{Player: p1, Card: game.Hands[p1][0]})
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	_, err = s.controller.JudgeCard(s.ctx, id, p1, 2)
	s.ErrorIs(err, model.ErrJudgeCannotVoteSelf)
}

func (s *ControllerSuite) TestJudgeCardAdvancesRound() {
	id := s.startedGame()
	s.play(id, p2, 1)
	s.play(id, p3, 1)

	game := s.judge(id, p1, 1)

	s.Equal(2, game.Round)
	s.Equal(p2, game.CurrentJudge())
	s.Equal(p3, game.ActivePlayer())
	s.Equal(model.PhasePlaying, game.Phase)
	s.Empty(game.Played)
	s.Equal(0, game.TurnIndex)
	s.Equal(s.deck.QuestionFor(testSeed, 2), game.Question)
	s.Equal(1, game.Scores[p3])

	events := s.recorder.Events()
	s.Require().Len(events, 3)
	judged := events[2].Payload.(model.CardJudgedPayload)
	s.Equal(p3, judged.Winner)
	s.Equal(1, judged.Round)

	lifetime, err := s.players.GetPlayer(s.ctx, p3)
	s.Require().NoError(err)
	s.Equal(1, lifetime.Score)
}

func (s *ControllerSuite) TestFullGameWithWinner() {
	id := s.startedGame()

	s.play(id, p2, 1)
	s.play(id, p3, 1)
	s.judge(id, p1, 0) // p2

	s.play(id, p3, 2)
	s.play(id, p1, 1)
	s.judge(id, p2, 1) // p1

	s.play(id, p1, 2)
	s.play(id, p2, 2)
	game := s.judge(id, p3, 0) // p1

	s.Equal(model.GameStatusEnded, game.Status)
	s.Equal(p1, game.Winner)
	s.Equal(map[model.Identity]int{p1: 2, p2: 1, p3: 0}, game.Scores)
	s.False(game.PlayersCardsLeft())

	types := s.recorder.Types()
	s.Equal(model.EventGameEnded, types[len(types)-1])
	ended := s.recorder.Events()[len(types)-1].Payload.(model.GameEndedPayload)
	s.Equal(p1, ended.Winner)

	_, err := s.controller.PlayCard(s.ctx, id, p1, 0)
	s.ErrorIs(err, model.ErrInvalidGameStatus)
}

func (s *ControllerSuite) TestFullGameDraw() {
	id := s.startedGame()

	s.play(id, p2, 1)
	s.play(id, p3, 1)
	s.judge(id, p1, 0) // p2

	s.play(id, p3, 2)
	s.play(id, p1, 1)
	s.judge(id, p2, 0) // p3

	s.play(id, p1, 2)
	s.play(id, p2, 2)
	game := s.judge(id, p3, 0) // p1

	s.Equal(model.GameStatusEnded, game.Status)
	s.Equal(model.Identity(""), game.Winner)
	s.Equal(map[model.Identity]int{p1: 1, p2: 1, p3: 1}, game.Scores)
}

func (s *ControllerSuite) TestStrictLeader() {
	seats := []model.Identity{p1, p2, p3}
	s.Equal(p2, strictLeader(seats, map[model.Identity]int{p1: 0, p2: 2, p3: 1}))
	s.Equal(model.Identity(""), strictLeader(seats, map[model.Identity]int{p1: 1, p2: 1, p3: 0}))
	s.Equal(model.Identity(""), strictLeader(seats, map[model.Identity]int{}))
}

// RestartGame tests

func (s *ControllerSuite) TestRestartGame() {
	id := s.startedGame()
	s.play(id, p2, 0)

	game, err := s.controller.RestartGame(s.ctx, id, "ops")
	s.Require().NoError(err)

	s.Equal(model.GameStatusPending, game.Status)
	s.Equal([]model.Identity{p1, p2, p3}, game.Seats)
	s.Equal(0, game.Round)
	s.Nil(game.Hands)
	s.Empty(game.Played)
	s.True(game.Seed.IsZero())
	s.Equal([]model.EventType{model.EventCardPlayed, model.EventGameRestarted}, s.recorder.Types())

	// A restarted game can be started again
	_, err = s.controller.StartGame(s.ctx, id, p1, model.Bytes32{1})
	s.NoError(err)
}

func (s *ControllerSuite) TestRestartGameNotFound() {
	_, err := s.controller.RestartGame(s.ctx, 99, "ops")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Query tests

func (s *ControllerSuite) TestQueries() {
	id := s.startedGame()
	s.play(id, p2, 0)

	judge, err := s.controller.CurrentJudge(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(p1, judge)

	turn, err := s.controller.CurrentTurn(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, turn)

	round, err := s.controller.CurrentRound(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, round)

	active, err := s.controller.ActivePlayer(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(p3, active)

	played, err := s.controller.HasPlayed(s.ctx, id, p2)
	s.Require().NoError(err)
	s.True(played)

	left, err := s.controller.PlayersCardsLeft(s.ctx, id)
	s.Require().NoError(err)
	s.True(left)

	scores, err := s.controller.PlayerScores(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(map[model.Identity]int{p1: 0, p2: 0, p3: 0}, scores)
}

func (s *ControllerSuite) TestQueriesBeforeStart() {
	id := s.fullGame()

	judge, err := s.controller.CurrentJudge(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.Identity(""), judge)

	scores, err := s.controller.PlayerScores(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(map[model.Identity]int{p1: 0, p2: 0, p3: 0}, scores)
}

func (s *ControllerSuite) TestHand() {
	id := s.startedGame()
	s.play(id, p2, 1)

	hand, err := s.controller.Hand(s.ctx, id, p2)
	s.Require().NoError(err)
	s.Require().Len(hand, model.HandSize)
	s.False(hand[0].Used)
	s.True(hand[1].Used)
	s.Equal(s.deck.Resolve(hand[1].Card), hand[1].Text)

	_, err = s.controller.Hand(s.ctx, id, p4)
	s.ErrorIs(err, model.ErrNotPartOfGame)
}
