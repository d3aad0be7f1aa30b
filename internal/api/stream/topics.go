package stream

import (
	"strconv"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// AllTopic receives every event
const AllTopic = "all"

// GameTopic is the topic for events of a single game
func GameTopic(id model.GameID) string {
	return "game:" + strconv.FormatUint(uint64(id), 10)
}
