package redis

import (
	"fmt"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "caegame"

// playerKey returns the Redis key for a Player
func playerKey(identity model.Identity) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, identity)
}

// credentialKey returns the Redis key for a Credential
func credentialKey(identity model.Identity) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, identity)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%d", keyPrefix, id)
}

// gameCounterKey returns the Redis key for the game ID counter
func gameCounterKey() string {
	return fmt.Sprintf("%s:counter:game", keyPrefix)
}

// gamesByStatusIndexKey returns the Redis key for the ZSET of game IDs in a status,
// scored by ID so range reads come back in creation order
func gamesByStatusIndexKey(status model.GameStatus) string {
	return fmt.Sprintf("%s:idx:games:%s", keyPrefix, status)
}

// requestKey returns the Redis key for a RandomnessRequest
func requestKey(seq model.SequenceNumber) string {
	return fmt.Sprintf("%s:flip:%d", keyPrefix, seq)
}

var allGameStatuses = []model.GameStatus{
	model.GameStatusPending,
	model.GameStatusActive,
	model.GameStatusEnded,
}
