package game

import (
	"context"
	"log/slog"
	"maps"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/lock"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
	"github.com/mcoot/cardsagainstentropy/internal/services/deck"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
)

// ScoreKeeper records lifetime round wins
type ScoreKeeper interface {
	AwardPoint(ctx context.Context, identity model.Identity) error
}

// Controller manages the game state machine: dealing, turns, judging and scoring
type Controller struct {
	storage   storage.Storage
	deck      *deck.Service
	scores    ScoreKeeper
	locks     *lock.KeyedLock
	publisher notify.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	deck *deck.Service,
	scores ScoreKeeper,
	locks *lock.KeyedLock,
	publisher notify.Publisher,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		deck:      deck,
		scores:    scores,
		locks:     locks,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "game")),
	}
}

// mutate loads a game under its lock, applies fn and saves the result.
// Nothing is saved if fn fails.
func (c *Controller) mutate(ctx context.Context, gameID model.GameID, fn func(game *model.Game) error) (*model.Game, error) {
	var game *model.Game
	err := c.locks.WithLock(ctx, lock.GameKey(gameID), func() error {
		var err error
		game, err = c.storage.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if err := fn(game); err != nil {
			return err
		}
		game.UpdatedAt = c.clock.Now()
		if err := c.storage.SaveGame(ctx, game); err != nil {
			c.logger.Error("failed to save game",
				slog.Uint64("game_id", uint64(gameID)),
				slog.String("error", err.Error()),
			)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// SeedSource yields the seed for a game start
type SeedSource func(ctx context.Context) (model.Bytes32, error)

// StartGame deals the table from seed and opens round 1. Any seated player may start
// once every seat is taken.
func (c *Controller) StartGame(ctx context.Context, gameID model.GameID, identity model.Identity, seed model.Bytes32) (*model.Game, error) {
	return c.StartGameWith(ctx, gameID, identity, func(context.Context) (model.Bytes32, error) {
		return seed, nil
	})
}

// StartGameWith is StartGame with the seed obtained from source. source runs under
// the game lock and only after the start checks pass, so a single-use seed is
// never spent on a start that loses a race or would be rejected.
func (c *Controller) StartGameWith(ctx context.Context, gameID model.GameID, identity model.Identity, source SeedSource) (*model.Game, error) {
	var seed model.Bytes32
	game, err := c.mutate(ctx, gameID, func(game *model.Game) error {
		if err := checkStartable(game, identity); err != nil {
			return err
		}
		var err error
		if seed, err = source(ctx); err != nil {
			return err
		}

		hands := c.deck.DealTable(seed, len(game.Seats), model.HandSize)
		game.Hands = make(map[model.Identity][]model.CardRef, len(game.Seats))
		game.Used = make(map[model.Identity][]int, len(game.Seats))
		game.Scores = make(map[model.Identity]int, len(game.Seats))
		for i, p := range game.Seats {
			game.Hands[p] = hands[i]
			game.Used[p] = []int{}
			game.Scores[p] = 0
		}

		game.Seed = seed
		game.Status = model.GameStatusActive
		game.Winner = ""
		c.openRound(game, 1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.Uint64("game_id", uint64(gameID)),
		slog.String("identity", string(identity)),
		slog.String("seed", seed.Hex()),
	)

	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventGameStarted,
		Timestamp: game.UpdatedAt,
		GameID:    gameID,
		Identity:  identity,
		Payload: model.GameStartedPayload{
			Players:  game.Seats,
			Judge:    game.CurrentJudge(),
			Question: c.deck.Resolve(game.Question),
		},
	})

	return game, nil
}

func checkStartable(game *model.Game, identity model.Identity) error {
	if !game.IsSeated(identity) {
		return model.ErrNotPartOfGame
	}
	if !game.IsFull() {
		return model.ErrGameNotFull
	}
	if game.Status != model.GameStatusPending {
		return model.ErrInvalidGameStatus
	}
	return nil
}

// openRound resets per-round state and draws the round's question
func (c *Controller) openRound(game *model.Game, round int) {
	game.Round = round
	game.JudgeIndex = (round - 1) % len(game.Seats)
	game.TurnIndex = 0
	game.Played = nil
	game.Phase = model.PhasePlaying
	game.Question = c.deck.QuestionFor(game.Seed, round)
}

// PlayCard plays the card in hand slot cardIndex mod HandSize for the active player
func (c *Controller) PlayCard(ctx context.Context, gameID model.GameID, identity model.Identity, cardIndex int) (*model.Game, error) {
	var played model.PlayedCard
	game, err := c.mutate(ctx, gameID, func(game *model.Game) error {
		if game.Status != model.GameStatusActive || game.Phase != model.PhasePlaying {
			return model.ErrInvalidGameStatus
		}
		if game.ActivePlayer() != identity {
			return model.ErrNotThisPlayersTurn
		}
		if cardIndex < 0 {
			return model.ErrInvalidCardIndex
		}
		slot := cardIndex % model.HandSize
		if slot >= len(game.Hands[identity]) {
			return model.ErrInvalidCardIndex
		}
		if game.IsUsed(identity, slot) {
			return model.ErrCardAlreadyUsed
		}

		card := game.Hands[identity][slot]
		played = model.PlayedCard{
			Player: identity,
			Slot:   slot,
			Card:   card,
			Text:   c.deck.Resolve(card),
		}
		game.Played = append(game.Played, played)
		game.Used[identity] = append(game.Used[identity], slot)
		game.TurnIndex++
		if game.TurnIndex >= len(game.Seats)-1 {
			game.Phase = model.PhaseJudging
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("card played",
		slog.Uint64("game_id", uint64(gameID)),
		slog.String("identity", string(identity)),
		slog.Int("round", game.Round),
		slog.Int("slot", played.Slot),
	)

	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventCardPlayed,
		Timestamp: game.UpdatedAt,
		GameID:    gameID,
		Identity:  identity,
		Payload: model.CardPlayedPayload{
			CardText: played.Text,
			Question: c.deck.Resolve(game.Question),
			Round:    game.Round,
		},
	})

	return game, nil
}

// JudgeCard awards the round to whoever played the card at playerIndex, counted
// in turn order. The game ends once nobody holds a playable card; otherwise the
// next round opens.
func (c *Controller) JudgeCard(ctx context.Context, gameID model.GameID, identity model.Identity, playerIndex int) (*model.Game, error) {
	var (
		roundWinner model.Identity
		cardText    string
		round       int
	)
	game, err := c.mutate(ctx, gameID, func(game *model.Game) error {
		if game.Status != model.GameStatusActive || game.Phase != model.PhaseJudging {
			return model.ErrInvalidGameStatus
		}
		if game.CurrentJudge() != identity {
			return model.ErrNotTheJudge
		}
		if playerIndex < 0 || playerIndex >= len(game.Played) {
			return model.ErrInvalidPlayerIndex
		}
		picked := game.Played[playerIndex]
		if picked.Player == identity {
			return model.ErrJudgeCannotVoteSelf
		}

		round = game.Round
		roundWinner = picked.Player
		cardText = picked.Text
		game.Scores[roundWinner]++

		if game.PlayersCardsLeft() {
			c.openRound(game, game.Round+1)
			return nil
		}

		game.Status = model.GameStatusEnded
		game.Phase = ""
		game.Winner = strictLeader(game.Seats, game.Scores)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The game record is authoritative; a failed lifetime update is logged only
	if err := c.scores.AwardPoint(ctx, roundWinner); err != nil {
		c.logger.Error("failed to award lifetime point",
			slog.String("identity", string(roundWinner)),
			slog.String("error", err.Error()),
		)
	}

	c.logger.Info("card judged",
		slog.Uint64("game_id", uint64(gameID)),
		slog.Int("round", round),
		slog.String("winner", string(roundWinner)),
	)

	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventCardJudged,
		Timestamp: game.UpdatedAt,
		GameID:    gameID,
		Identity:  identity,
		Payload: model.CardJudgedPayload{
			Winner:   roundWinner,
			CardText: cardText,
			Round:    round,
		},
	})

	if game.Status == model.GameStatusEnded {
		c.logger.Info("game ended",
			slog.Uint64("game_id", uint64(gameID)),
			slog.String("winner", string(game.Winner)),
			slog.Int("rounds", game.Round),
		)
		c.publisher.Publish(ctx, model.Event{
			Type:      model.EventGameEnded,
			Timestamp: game.UpdatedAt,
			GameID:    gameID,
			Identity:  game.Winner,
			Payload: model.GameEndedPayload{
				Winner: game.Winner,
				Scores: maps.Clone(game.Scores),
			},
		})
	}

	return game, nil
}

// strictLeader returns the single highest scorer, or "" on a tie for first
func strictLeader(seats []model.Identity, scores map[model.Identity]int) model.Identity {
	var (
		leader model.Identity
		best   = -1
		tied   bool
	)
	for _, p := range seats {
		switch score := scores[p]; {
		case score > best:
			leader, best, tied = p, score, false
		case score == best:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return leader
}

// RestartGame is a maintenance operation: it returns a game to pending with
// its seats intact and all round state cleared
func (c *Controller) RestartGame(ctx context.Context, gameID model.GameID, operator string) (*model.Game, error) {
	game, err := c.mutate(ctx, gameID, func(game *model.Game) error {
		game.Status = model.GameStatusPending
		game.Round = 0
		game.JudgeIndex = 0
		game.TurnIndex = 0
		game.Phase = ""
		game.Seed = model.Bytes32{}
		game.Question = model.CardRef{}
		game.Hands = nil
		game.Used = nil
		game.Played = nil
		game.Scores = nil
		game.Winner = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Warn("game restarted",
		slog.Uint64("game_id", uint64(gameID)),
		slog.String("operator", operator),
	)

	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventGameRestarted,
		Timestamp: game.UpdatedAt,
		GameID:    gameID,
	})

	return game, nil
}
