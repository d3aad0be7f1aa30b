package model

import (
	"maps"
	"slices"
	"time"
)

const (
	// MaxPlayers is the table capacity of every game
	MaxPlayers = 3
	// HandSize is the number of answer cards dealt to each seat. Every player
	// judges exactly once, so each plays one card in each of the other rounds.
	HandSize = MaxPlayers - 1
)

// GameID is assigned monotonically by storage, starting at 1
type GameID uint64

// GameStatus is the lifecycle of a game. It only moves forward, except for
// the maintenance restart which returns a game to pending.
type GameStatus string

const (
	GameStatusPending GameStatus = "pending"
	GameStatusActive  GameStatus = "active"
	GameStatusEnded   GameStatus = "ended"
)

// RoundPhase is the sub-state of an active game
type RoundPhase string

const (
	PhasePlaying RoundPhase = "playing" // non-judges play in turn order
	PhaseJudging RoundPhase = "judging" // judge picks a winning card
)

// PlayedCard is one answer submitted during a round
type PlayedCard struct {
	Player Identity
	Slot   int // hand slot the card came from
	Card   CardRef
	Text   string
}

// Game is a single table of the card game
type Game struct {
	ID      GameID
	Name    string
	Creator Identity
	Status  GameStatus

	// Seats in join order; no duplicates, at most MaxPlayers
	Seats []Identity

	// Round state, meaningful while active
	Round      int // 1-based, 0 before start
	JudgeIndex int
	TurnIndex  int // plays made this round
	Phase      RoundPhase
	Seed       Bytes32
	Question   CardRef

	Hands  map[Identity][]CardRef
	Used   map[Identity][]int // hand slots already played, across rounds
	Played []PlayedCard       // this round, in play order
	Scores map[Identity]int

	Winner Identity // empty on a draw or while not ended

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SeatOf returns the seat index of an identity, or -1
func (g *Game) SeatOf(identity Identity) int {
	return slices.Index(g.Seats, identity)
}

// IsSeated reports whether the identity holds a seat
func (g *Game) IsSeated(identity Identity) bool {
	return g.SeatOf(identity) >= 0
}

// IsFull reports whether every seat is taken
func (g *Game) IsFull() bool {
	return len(g.Seats) >= MaxPlayers
}

// CurrentJudge returns the judge for the current round, or "" if not active
func (g *Game) CurrentJudge() Identity {
	if g.Status != GameStatusActive || len(g.Seats) == 0 {
		return ""
	}
	return g.Seats[g.JudgeIndex]
}

// ActivePlayer returns whose turn it is to play, or "" outside the playing phase.
// Turn order starts after the judge and wraps, skipping the judge's seat.
func (g *Game) ActivePlayer() Identity {
	if g.Status != GameStatusActive || g.Phase != PhasePlaying || len(g.Seats) == 0 {
		return ""
	}
	return g.Seats[(g.JudgeIndex+1+g.TurnIndex)%len(g.Seats)]
}

// IsUsed reports whether a hand slot has already been played
func (g *Game) IsUsed(identity Identity, slot int) bool {
	return slices.Contains(g.Used[identity], slot)
}

// CardsLeft returns how many hand slots a player has not yet played
func (g *Game) CardsLeft(identity Identity) int {
	return len(g.Hands[identity]) - len(g.Used[identity])
}

// PlayersCardsLeft reports whether any seated player still holds a playable card
func (g *Game) PlayersCardsLeft() bool {
	for _, p := range g.Seats {
		if g.CardsLeft(p) > 0 {
			return true
		}
	}
	return false
}

// HasPlayed reports whether a player already played this round
func (g *Game) HasPlayed(identity Identity) bool {
	return slices.ContainsFunc(g.Played, func(pc PlayedCard) bool {
		return pc.Player == identity
	})
}

// Clone returns a deep copy so stored state is never aliased by callers
func (g *Game) Clone() *Game {
	c := *g
	c.Seats = slices.Clone(g.Seats)
	c.Played = slices.Clone(g.Played)
	c.Scores = maps.Clone(g.Scores)
	if g.Hands != nil {
		c.Hands = make(map[Identity][]CardRef, len(g.Hands))
		for k, v := range g.Hands {
			c.Hands[k] = slices.Clone(v)
		}
	}
	if g.Used != nil {
		c.Used = make(map[Identity][]int, len(g.Used))
		for k, v := range g.Used {
			c.Used[k] = slices.Clone(v)
		}
	}
	return &c
}
