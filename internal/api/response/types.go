package response

import (
	"time"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/services/auth"
	"github.com/mcoot/cardsagainstentropy/internal/services/game"
)

// CardResolver turns a card reference into its text
type CardResolver interface {
	Resolve(ref model.CardRef) string
}

// Session is the response for identity and login endpoints
type Session struct {
	Identity     string    `json:"identity"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionFromAuth converts an auth.Session
func SessionFromAuth(s *auth.Session) Session {
	return Session{
		Identity:     string(s.Identity),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Player represents a player in API responses
type Player struct {
	Identity    string    `json:"identity"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		Identity:    string(p.Identity),
		DisplayName: p.DisplayName,
		Score:       p.Score,
		CreatedAt:   p.CreatedAt,
	}
}

// GameSummary is a game as it appears in listings
type GameSummary struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Creator   string    `json:"creator"`
	Status    string    `json:"status"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"created_at"`
}

// GameSummaryFromModel converts a model.Game to a listing entry
func GameSummaryFromModel(g *model.Game) GameSummary {
	return GameSummary{
		ID:        uint64(g.ID),
		Name:      g.Name,
		Creator:   string(g.Creator),
		Status:    string(g.Status),
		Players:   identities(g.Seats),
		CreatedAt: g.CreatedAt,
	}
}

// GameSummariesFromModel converts a list of games
func GameSummariesFromModel(games []*model.Game) []GameSummary {
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, GameSummaryFromModel(g))
	}
	return out
}

// PlayedCard is a card submitted this round
type PlayedCard struct {
	Player    string `json:"player"`
	CardIndex uint64 `json:"card_index"`
	Text      string `json:"text"`
}

// GameState is the full public view of a game
type GameState struct {
	GameSummary
	Round            int            `json:"round"`
	Phase            string         `json:"phase,omitempty"`
	Judge            string         `json:"judge,omitempty"`
	Turn             int            `json:"turn"`
	ActivePlayer     string         `json:"active_player,omitempty"`
	Question         string         `json:"question,omitempty"`
	Played           []PlayedCard   `json:"played"`
	Scores           map[string]int `json:"scores"`
	CardsLeft        map[string]int `json:"cards_left"`
	PlayersCardsLeft bool           `json:"players_cards_left"`
	Seed             string         `json:"seed,omitempty"`
	Winner           string         `json:"winner,omitempty"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// GameStateFromModel converts a model.Game, resolving card text through the decks
func GameStateFromModel(g *model.Game, decks CardResolver) GameState {
	state := GameState{
		GameSummary:      GameSummaryFromModel(g),
		Round:            g.Round,
		Phase:            string(g.Phase),
		Judge:            string(g.CurrentJudge()),
		Turn:             g.TurnIndex,
		ActivePlayer:     string(g.ActivePlayer()),
		Played:           make([]PlayedCard, 0, len(g.Played)),
		Scores:           make(map[string]int, len(g.Seats)),
		CardsLeft:        make(map[string]int, len(g.Seats)),
		PlayersCardsLeft: g.PlayersCardsLeft(),
		Winner:           string(g.Winner),
		UpdatedAt:        g.UpdatedAt,
	}
	if g.Status != model.GameStatusPending {
		state.Question = decks.Resolve(g.Question)
		state.Seed = g.Seed.Hex()
	}
	for _, pc := range g.Played {
		state.Played = append(state.Played, PlayedCard{
			Player:    string(pc.Player),
			CardIndex: pc.Card.Index,
			Text:      pc.Text,
		})
	}
	for _, p := range g.Seats {
		state.Scores[string(p)] = g.Scores[p]
		state.CardsLeft[string(p)] = g.CardsLeft(p)
	}
	return state
}

// HandCard is one slot of the caller's hand
type HandCard struct {
	Slot      int    `json:"slot"`
	CardIndex uint64 `json:"card_index"`
	Text      string `json:"text"`
	Used      bool   `json:"used"`
}

// Hand is the caller's hand in a game
type Hand struct {
	GameID    uint64     `json:"game_id"`
	Cards     []HandCard `json:"cards"`
	HasPlayed bool       `json:"has_played"`
}

// HandFromCards converts the game service's hand view
func HandFromCards(gameID model.GameID, cards []game.HandCard, hasPlayed bool) Hand {
	out := Hand{GameID: uint64(gameID), Cards: make([]HandCard, 0, len(cards)), HasPlayed: hasPlayed}
	for _, c := range cards {
		out.Cards = append(out.Cards, HandCard{
			Slot:      c.Slot,
			CardIndex: c.Card.Index,
			Text:      c.Text,
			Used:      c.Used,
		})
	}
	return out
}

// FlipFee is the response for the fee query
type FlipFee struct {
	Fee uint64 `json:"fee"`
}

// Flip is a randomness request
type Flip struct {
	SequenceNumber     uint64    `json:"sequence_number"`
	Requester          string    `json:"requester"`
	Commitment         string    `json:"commitment"`
	ProviderCommitment string    `json:"provider_commitment"`
	Fee                uint64    `json:"fee"`
	Status             string    `json:"status"`
	Seed               string    `json:"seed,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// FlipFromModel converts a model.RandomnessRequest
func FlipFromModel(r *model.RandomnessRequest) Flip {
	f := Flip{
		SequenceNumber:     uint64(r.SequenceNumber),
		Requester:          string(r.Requester),
		Commitment:         r.Commitment.Hex(),
		ProviderCommitment: r.ProviderCommitment.Hex(),
		Fee:                r.Fee,
		Status:             string(r.Status),
		CreatedAt:          r.CreatedAt,
	}
	if r.Status != model.FlipPending {
		f.Seed = r.Seed.Hex()
	}
	return f
}

// Seed is the response for a successful reveal
type Seed struct {
	SequenceNumber uint64 `json:"sequence_number"`
	Seed           string `json:"seed"`
}

// Deck is a full deck listing
type Deck struct {
	Kind  string   `json:"kind"`
	Cards []string `json:"cards"`
}

// DeckEntry is a single deck lookup
type DeckEntry struct {
	Kind  string `json:"kind"`
	Index uint64 `json:"index"`
	Text  string `json:"text"`
}

// Health is the liveness response
type Health struct {
	Status string `json:"status"`
}

func identities(ids []model.Identity) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
