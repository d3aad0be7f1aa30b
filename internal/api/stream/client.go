package stream

import (
	"time"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from a websocket peer
	pongWait = 60 * time.Second

	// Time between keepalive pings; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one subscriber, over SSE or websocket
type Client struct {
	hub         *Hub
	identity    model.Identity
	transport   string
	send        chan model.Event
	connectedAt time.Time
}

// NewClient creates a new client for a hub
func NewClient(hub *Hub, identity model.Identity, transport string) *Client {
	return &Client{
		hub:         hub,
		identity:    identity,
		transport:   transport,
		send:        make(chan model.Event, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Events returns the client's outgoing queue. It is closed when the client
// is unregistered or its hub shuts down.
func (c *Client) Events() <-chan model.Event {
	return c.send
}
