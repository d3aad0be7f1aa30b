package stream

import (
	"context"
	"log/slog"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
)

// Broadcaster publishes events to the game's hub and the firehose hub.
// Topics nobody is subscribed to are skipped.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

var _ notify.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "stream-broadcaster")),
	}
}

// Publish implements notify.Publisher
func (b *Broadcaster) Publish(_ context.Context, event model.Event) {
	if event.GameID != 0 {
		if hub := b.hubManager.GetHub(GameTopic(event.GameID)); hub != nil {
			hub.Broadcast(event)
		}
	}
	if hub := b.hubManager.GetHub(AllTopic); hub != nil {
		hub.Broadcast(event)
	}
}
