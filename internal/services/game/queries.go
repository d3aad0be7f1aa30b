package game

import (
	"context"
	"maps"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// HandCard is one slot of a player's hand as shown to that player
type HandCard struct {
	Slot int
	Card model.CardRef
	Text string
	Used bool
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// CurrentJudge returns the judge of the current round, or "" if the game is not active
func (c *Controller) CurrentJudge(ctx context.Context, gameID model.GameID) (model.Identity, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	return game.CurrentJudge(), nil
}

// CurrentTurn returns how many cards have been played this round
func (c *Controller) CurrentTurn(ctx context.Context, gameID model.GameID) (int, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	return game.TurnIndex, nil
}

// CurrentRound returns the 1-based round number, 0 before the game starts
func (c *Controller) CurrentRound(ctx context.Context, gameID model.GameID) (int, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	return game.Round, nil
}

// ActivePlayer returns whose turn it is to play, or "" outside the playing phase
func (c *Controller) ActivePlayer(ctx context.Context, gameID model.GameID) (model.Identity, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	return game.ActivePlayer(), nil
}

// PlayerScores returns the per-game score of every seat
func (c *Controller) PlayerScores(ctx context.Context, gameID model.GameID) (map[model.Identity]int, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	scores := make(map[model.Identity]int, len(game.Seats))
	for _, p := range game.Seats {
		scores[p] = 0
	}
	maps.Copy(scores, game.Scores)
	return scores, nil
}

// PlayersCardsLeft reports whether any seated player can still play
func (c *Controller) PlayersCardsLeft(ctx context.Context, gameID model.GameID) (bool, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	return game.PlayersCardsLeft(), nil
}

// HasPlayed reports whether a player has already played this round
func (c *Controller) HasPlayed(ctx context.Context, gameID model.GameID, identity model.Identity) (bool, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	return game.HasPlayed(identity), nil
}

// Hand returns a seated player's dealt cards with their text and used flags
func (c *Controller) Hand(ctx context.Context, gameID model.GameID, identity model.Identity) ([]HandCard, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.IsSeated(identity) {
		return nil, model.ErrNotPartOfGame
	}

	refs := game.Hands[identity]
	hand := make([]HandCard, 0, len(refs))
	for slot, ref := range refs {
		hand = append(hand, HandCard{
			Slot: slot,
			Card: ref,
			Text: c.deck.Resolve(ref),
			Used: game.IsUsed(identity, slot),
		})
	}
	return hand, nil
}
