package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

func TestRecorderKeepsOrder(t *testing.T) {
	r := &Recorder{}
	r.Publish(context.Background(), model.Event{Type: model.EventGameCreated})
	r.Publish(context.Background(), model.Event{Type: model.EventPlayerJoinedGame})

	assert.Equal(t, []model.EventType{model.EventGameCreated, model.EventPlayerJoinedGame}, r.Types())

	r.Reset()
	assert.Empty(t, r.Events())
}

func TestMultiFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Multi{a, Nop{}, b}.Publish(context.Background(), model.Event{Type: model.EventGameEnded})

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}
