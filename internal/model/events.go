package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Registry events
	EventPlayerRegistered EventType = "player_registered"
	EventGameCreated      EventType = "game_created"
	EventPlayerJoinedGame EventType = "player_joined_game"

	// Game events
	EventGameStarted   EventType = "game_started"
	EventCardPlayed    EventType = "card_played"
	EventCardJudged    EventType = "card_judged"
	EventGameEnded     EventType = "game_ended"
	EventGameRestarted EventType = "game_restarted"

	// Randomness events
	EventFlipRequested EventType = "flip_requested"
	EventFlipRevealed  EventType = "flip_revealed"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    GameID    `json:"game_id,omitempty"`  // zero for non-game events
	Identity  Identity  `json:"identity,omitempty"` // the player who triggered or is affected
	Payload   any       `json:"payload,omitempty"`  // type-specific data
}

// PlayerRegisteredPayload contains data for player registered events
type PlayerRegisteredPayload struct {
	DisplayName string `json:"display_name"`
}

// GameCreatedPayload contains data for game created events
type GameCreatedPayload struct {
	Name    string   `json:"name"`
	Creator Identity `json:"creator"`
}

// PlayerJoinedGamePayload contains data for player joined events
type PlayerJoinedGamePayload struct {
	Seat  int `json:"seat"`
	Seats int `json:"seats"`
}

// GameStartedPayload contains data for game started events
type GameStartedPayload struct {
	Players  []Identity `json:"players"`
	Judge    Identity   `json:"judge"`
	Question string     `json:"question"`
}

// CardPlayedPayload contains data for card played events
type CardPlayedPayload struct {
	CardText string `json:"card_text"`
	Question string `json:"question"`
	Round    int    `json:"round"`
}

// CardJudgedPayload contains data for card judged events
type CardJudgedPayload struct {
	Winner   Identity `json:"winner"`
	CardText string   `json:"card_text"`
	Round    int      `json:"round"`
}

// GameEndedPayload contains data for game ended events
type GameEndedPayload struct {
	Winner Identity         `json:"winner,omitempty"` // empty on a draw
	Scores map[Identity]int `json:"scores"`
}

// FlipPayload contains data for randomness request events
type FlipPayload struct {
	SequenceNumber SequenceNumber `json:"sequence_number"`
}
