package stream

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// NewUpgrader returns the websocket upgrader used for event streams
func NewUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		// Streams are read-only and carry no credentials beyond the bearer token
		CheckOrigin:     func(r *http.Request) bool { return true },
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// ServeWS upgrades the request and streams a hub's events as JSON text frames.
// Anything the peer sends is discarded; reads only service pings and closes.
func ServeWS(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, hub *Hub, identity model.Identity, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(hub, identity, "ws")
	hub.Register(client)

	go readPump(conn, hub, client, logger)
	writePump(conn, client)
}

func readPump(conn *websocket.Conn, hub *Hub, client *Client, logger *slog.Logger) {
	defer func() {
		hub.Unregister(client)
		_ = conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("unexpected websocket close", slog.String("error", err.Error()))
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case event, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
