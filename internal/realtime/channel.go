package realtime

import (
	"encoding/json"
	"sync"

	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/gorilla/websocket"
)

// WSChannel adapts a websocket connection to the Channel interface. Writes are
// serialized; gorilla/websocket allows only one concurrent writer.
type WSChannel struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewWSChannel(conn *websocket.Conn) *WSChannel {
	return &WSChannel{conn: conn}
}

// Send frames the event in an envelope and writes it to the socket.
func (c *WSChannel) Send(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(models.Envelope{Event: event, Data: data})
}

func (c *WSChannel) Close() error {
	return c.conn.Close()
}
